package annotatorprocessor

import (
	"errors"

	"github.com/ziggurat-data/firehose-otlp-annotator/internal/augment"
)

// Attribute is one custom key/value pair to stamp onto synthetic metrics.
type Attribute struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// Config defines configuration for the Lambda annotator processor.
type Config struct {
	// Lambda function names to annotate.
	TargetFunctionNames []string `mapstructure:"target_function_names"`

	// Data point attribute identifying a function (default: "FunctionName").
	FunctionKey string `mapstructure:"function_name_key"`

	// Custom attributes stamped, in order, onto every synthetic metric.
	Attributes []Attribute `mapstructure:"attributes"`
}

// Validate checks if the processor configuration is valid.
func (cfg *Config) Validate() error {
	if len(cfg.TargetFunctionNames) == 0 {
		return errors.New("target_function_names is required")
	}
	for _, name := range cfg.TargetFunctionNames {
		if name == "" {
			return errors.New("target_function_names must not contain empty names")
		}
	}
	for _, attr := range cfg.Attributes {
		if attr.Key == "" || attr.Value == "" {
			return errors.New("attributes entries require both key and value")
		}
	}
	return nil
}

// rule compiles the configuration into the matching rule applied per batch.
func (cfg *Config) rule() augment.Rule {
	functionKey := cfg.FunctionKey
	if functionKey == "" {
		functionKey = defaultFunctionKey
	}
	attrs := make([]augment.Attribute, 0, len(cfg.Attributes))
	for _, attr := range cfg.Attributes {
		attrs = append(attrs, augment.Attribute{Key: attr.Key, Value: attr.Value})
	}
	return augment.NewRule(functionKey, cfg.TargetFunctionNames, attrs)
}
