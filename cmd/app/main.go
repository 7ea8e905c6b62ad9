package main

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/bootstrap"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{Name: "media-grabber", Output: os.Stderr})

	app, err := bootstrap.New()
	if err != nil {
		logger.Error("bootstrap app", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		logger.Error("run app", "error", err)
		os.Exit(1)
	}
}
