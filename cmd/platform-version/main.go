package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
	}
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
