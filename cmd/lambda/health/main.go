// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/config"
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

	_ = a.OpenProfiles(ctx)
	if err := a.LoadCatalog(ctx); err != nil {
		utils.GetLogger().Warn("Catalog not loaded", utils.Error(err))
	}

	lambda.Start(a.Health().Handle)
}
