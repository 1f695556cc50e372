package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategoryType(t *testing.T) {
	tests := []struct {
		in      string
		want    CategoryType
		wantErr bool
	}{
		{"Essentails", Essentials, false},
		{"Essentials", Essentials, false},
		{"leisure", Leisure, false},
		{" Loans ", Loans, false},
		{"Investments", Investments, false},
		{"", "", true},
		{"Savings", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCategoryType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategoryType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidCategoryType) {
			t.Errorf("ParseCategoryType(%q) error = %v, want ErrInvalidCategoryType", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCategoryType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryType_LabelAndExamples(t *testing.T) {
	if Essentials.Label() != "Essentials" {
		t.Errorf("Essentials.Label() = %q", Essentials.Label())
	}
	for _, ct := range CategoryTypes {
		if ct.Examples() == "" {
			t.Errorf("%s has no examples", ct)
		}
	}
}

func TestExpenseCategory_DeletedPlaceholder(t *testing.T) {
	deleted := ExpenseCategory{ID: "c1", CategoryName: DeletedCategoryName}
	blank := ExpenseCategory{ID: "c2"}
	live := ExpenseCategory{ID: "c3", CategoryName: "Food", CategoryType: Essentials}

	if deleted.Selectable() || blank.Selectable() {
		t.Error("deleted categories must not be selectable")
	}
	if !live.Selectable() {
		t.Error("live category should be selectable")
	}
	if blank.DisplayName() != DeletedCategoryName {
		t.Errorf("blank DisplayName() = %q", blank.DisplayName())
	}
	if live.DisplayName() != "Food" {
		t.Errorf("live DisplayName() = %q", live.DisplayName())
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"150", "150", nil},
		{"12.50", "12.5", nil},
		{"12,5", "12.5", nil},
		{" 7 ", "7", nil},
		{"", "0", ErrAmountRequired},
		{"0", "0", ErrAmountRequired},
		{"abc", "0", ErrAmountRequired},
		{"-3", "-3", ErrAmountNegative},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseAmount(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if FormatAmount(decimal.Zero) != "" {
		t.Error("zero should format blank")
	}
	if got := FormatAmount(decimal.RequireFromString("150.00")); got != "150" {
		t.Errorf("FormatAmount = %q, want 150", got)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := map[string]string{
		"":               MsgEmailRequired,
		"   ":            MsgEmailRequired,
		"user":           MsgEmailInvalid,
		"user@host":      MsgEmailInvalid,
		"us er@host.com": MsgEmailInvalid,
		"user@host.com":  "",
	}
	for in, want := range tests {
		if got := ValidateEmail(in); got != want {
			t.Errorf("ValidateEmail(%q) = %q, want %q", in, got, want)
		}
	}
	if ValidatePassword("") != MsgPasswordRequired || ValidatePassword("x") != "" {
		t.Error("ValidatePassword mismatch")
	}
}

func TestDraftEntry_Visibility(t *testing.T) {
	d := DraftEntry{}
	if d.ShowAmount() || d.ShowCategory() || !d.IsEmpty() {
		t.Error("fresh draft shows only the item name")
	}
	d.StepIndex = StepAmount
	if !d.ShowAmount() || d.ShowCategory() {
		t.Error("step 1 shows amount only")
	}
	d.StepIndex = StepCategory
	if !d.ShowCategory() {
		t.Error("step 2 shows category")
	}
}
