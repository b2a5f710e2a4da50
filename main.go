package main

import (
	"github.com/joho/godotenv"

	"github.com/aimless-wiki/db/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
