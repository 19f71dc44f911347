package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/jobboard/internal/cli"
)

func main() {
	if err := run(); err != nil {
		// notifications and field errors are already on screen
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env file: %v", err)
	}

	return cli.Execute(context.Background(), os.Args[1:])
}
