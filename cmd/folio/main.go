package main

import (
	"os"

	"github.com/wonny/folio/cmd/folio/commands"
)

// main is the entry point for the folio CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/folio [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
