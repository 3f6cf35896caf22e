package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load env overrides from a local .env if present.
	_ = godotenv.Load(".env")

	Execute()
}
