package main

import (
	"context"
	"log"
	"time"

	"clickstream-backend/internal/config"
	"clickstream-backend/internal/di"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var container *di.Container

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.String("function", "load-manifest"),
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

func main() {
	lambda.Start(container.Handler.LoadManifest)
}
