package main

import (
	"log"

	"github.com/kilianp07/evrange/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("evrange: %v", err)
	}
}
