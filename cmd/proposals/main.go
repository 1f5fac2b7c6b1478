package main

import (
	"log"

	"github.com/brandonbloom/proposals/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("proposals: ")
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
