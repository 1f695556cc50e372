package backend

import (
	"context"
	"path/filepath"
	"testing"

	"mykharche/internal/config"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DraftBackend: "sqlite", SQLiteDBPath: "./x.db"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "./x.db" {
		t.Errorf("FromAppConfig() = %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DraftBackend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(applog.Discard())

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "d.db")}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "redis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer func() { _ = res.Close() }()

			if err := res.Store.Save(ctx, "d", core.DraftEntry{ItemName: "Coffee"}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, found, err := res.Store.Restore(ctx, "d")
			if err != nil || !found || got.ItemName != "Coffee" {
				t.Errorf("Restore() = %+v, %v, %v", got, found, err)
			}
			if res.Purger == nil {
				t.Error("backend should expose a purger")
			}
		})
	}
}
