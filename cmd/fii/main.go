package main

import (
	"os"

	"github.com/wonny/fii-advisor/backend/cmd/fii/commands"
)

// main is the entry point for the FII advisor CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fii [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
