package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
