package main

import (
	"github.com/joho/godotenv"
	"rag/internal/cli"
)

func main() {
	// Best-effort: credentials such as the access token may come from a
	// local .env file instead of the shell environment.
	_ = godotenv.Load()

	cli.Execute()
}
