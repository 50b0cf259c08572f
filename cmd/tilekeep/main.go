package main

import (
	"log"

	"github.com/tilekeep/tilekeep/internal/app"
	"github.com/tilekeep/tilekeep/pkg/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	app.Run(cfg)
}
