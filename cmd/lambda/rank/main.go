// Ranking Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/config"
	"vehicle-match-engine/internal/handlers"
	"vehicle-match-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		panic("Failed to create app: " + err.Error())
	}
	defer a.Close()

	if err := a.OpenProfiles(ctx); err != nil {
		panic("Failed to open profile store: " + err.Error())
	}
	if err := a.LoadCatalog(ctx); err != nil {
		panic("Failed to load catalog: " + err.Error())
	}

	handler := handlers.NewRankHandler(a.Ranker())
	lambda.Start(handler.Handle)
}
