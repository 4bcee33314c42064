package main

import (
	"github.com/joho/godotenv"

	"github.com/pkfare/tripscale/cmd/tripscale/cmd"
)

func main() {
	// A missing .env is fine; environment variables win either way.
	_ = godotenv.Load()
	cmd.Execute()
}
