// Command docqa answers questions about plain-text documents.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load() //nolint:errcheck // optional file

	if err := cli.Execute(build); err != nil {
		os.Exit(1)
	}
}
