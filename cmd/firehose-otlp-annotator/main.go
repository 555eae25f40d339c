// Command firehose-otlp-annotator is the Lambda entrypoint for the Kinesis
// Firehose transform.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"

	"github.com/ziggurat-data/firehose-otlp-annotator/annotator"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var cfg annotator.Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		logger.Fatal("Failed to process configuration", zap.Error(err))
	}

	lambda.StartWithOptions(annotator.NewHandler(cfg, logger).Handle, lambda.WithContext(ctx))
}
