package main

import (
	"context"
	"log"

	"github.com/amk92987/wos-optimizer/internal/bootstrap"
	"github.com/amk92987/wos-optimizer/internal/shared/config"
	"github.com/amk92987/wos-optimizer/internal/shared/server"
	"github.com/amk92987/wos-optimizer/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	if app.DB != nil {
		if err := db.RunMigrations(context.Background(), app.DB); err != nil {
			log.Fatalf("migrations error: %v", err)
		}
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
