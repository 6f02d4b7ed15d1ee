package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/snomedcore/ingestion-core/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("no .env file loaded: %v\n", err)
	}

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	addr := ":" + a.Cfg.Port
	a.Log.Info("starting server", "address", addr)
	if err := a.Run(addr); err != nil {
		a.Log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
