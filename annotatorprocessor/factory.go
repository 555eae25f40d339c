// Package annotatorprocessor exposes the metric-stream annotation as an
// OpenTelemetry Collector metrics processor, for pipelines that consume the
// stream through a collector instead of a Firehose transform.
package annotatorprocessor

import (
	"context"

	"go.opentelemetry.io/collector/component"
	"go.opentelemetry.io/collector/consumer"
	"go.opentelemetry.io/collector/processor"
	"go.opentelemetry.io/collector/processor/processorhelper"
)

const (
	// typeStr is the value of "type" key in configuration.
	typeStr   = "lambdaannotator"
	stability = component.StabilityLevelAlpha

	// defaultFunctionKey is the attribute CloudWatch metric streams use
	// for the Lambda function dimension.
	defaultFunctionKey = "FunctionName"
)

// NewFactory creates a factory for the Lambda annotator processor.
func NewFactory() processor.Factory {
	return processor.NewFactory(
		component.MustNewType(typeStr),
		createDefaultConfig,
		processor.WithMetrics(createMetricsProcessor, stability),
	)
}

func createDefaultConfig() component.Config {
	return &Config{
		FunctionKey: defaultFunctionKey,
	}
}

// createMetricsProcessor creates a metrics processor based on provided config.
func createMetricsProcessor(
	ctx context.Context,
	set processor.Settings,
	cfg component.Config,
	nextConsumer consumer.Metrics,
) (processor.Metrics, error) {
	pCfg := cfg.(*Config)

	p := newAnnotator(pCfg, set.Logger)

	return processorhelper.NewMetricsProcessor(
		ctx,
		set,
		cfg,
		nextConsumer,
		p.processMetrics,
		processorhelper.WithCapabilities(consumer.Capabilities{MutatesData: true}),
	)
}
