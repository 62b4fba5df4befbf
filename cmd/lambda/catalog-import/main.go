// Catalog import Lambda entry point, triggered by S3 uploads
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

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		panic("Failed to create app: " + err.Error())
	}
	if a.S3 == nil {
		panic("S3 is not configured")
	}

	handler := handlers.NewCatalogImportHandler(a.S3, a.Normalizer, cfg.CatalogNormalizedPrefix)
	lambda.Start(handler.Handle)
}
