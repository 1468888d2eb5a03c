package main

import (
	"github.com/joho/godotenv"

	"github.com/theirongolddev/danak/cmd"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()
	cmd.Execute()
}
