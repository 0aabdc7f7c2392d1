package main

import (
	"context"
	"os"

	"webcivil-assist/cmd/webcivil-assist/commands"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

func main() {
	root, shutdown := commands.NewRootCmd()

	ctx := context.Background()
	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	shutdown(ctx)
	if err != nil {
		os.Exit(1)
	}
}
