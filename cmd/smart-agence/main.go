package main

import (
	"log/slog"
	"os"

	"github.com/smart-agence/crm-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error("smart-agence", "err", err)
		os.Exit(1)
	}
}
