package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	mkcli "mykharche/internal/cli"
)

func main() {
	app := &cli.Command{
		Name:  "mykharche",
		Usage: "MyKharche web frontend",
		Commands: []*cli.Command{
			mkcli.CmdServe,
			mkcli.CmdMigrate,
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
