package main

import (
	"github.com/caesium-cloud/lgflow/cmd"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/caesium-cloud/lgflow/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("lgflow failure", "error", err)
	}
}
