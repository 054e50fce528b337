package main

import (
	"log"

	"github.com/thiagokokada/git-paused/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("git-paused: %v", err)
	}
}
