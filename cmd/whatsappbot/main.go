package main

import (
	"log"
	"os"

	"github.com/nethra1406/whatsappbot/cmd/whatsappbot/app"
	"github.com/nethra1406/whatsappbot/configs"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	application, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("whatsappbot (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := application.Router.Run(cfg.App.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
