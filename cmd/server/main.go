// Command server runs the DzakCloud HTTP API and gRPC health endpoint.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/dzakcloud/internal/server"
	"github.com/dmitrijs2005/dzakcloud/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("run: %v", err)
	}
}
