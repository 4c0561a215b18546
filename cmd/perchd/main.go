package main

import (
	"log"

	"github.com/perchdesk/perch/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatalf("❌ perchd failed: %v", err)
	}
}
