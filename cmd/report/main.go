package main

import (
	"os"

	"wandb-ci/internal/adapters/primary/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewReportCommand()))
}
