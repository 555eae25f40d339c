package annotator

import (
	"strings"

	"github.com/ziggurat-data/firehose-otlp-annotator/internal/augment"
)

// defaultFunctionKey is the attribute CloudWatch metric streams use for the
// Lambda function dimension.
const defaultFunctionKey = "FunctionName"

// Config defines configuration for the Firehose transform, read from the
// Lambda environment.
type Config struct {
	// Comma-separated list of Lambda function names to annotate.
	TargetFunctionNames []string `env:"TARGET_FUNCTION_NAMES"`

	// Custom attribute stamped onto every synthetic metric.
	AttributeKey   string `env:"ATTRIBUTE_KEY"`
	AttributeValue string `env:"ATTRIBUTE_VALUE"`

	// Data point attribute identifying a function (default: "FunctionName").
	FunctionKey string `env:"FUNCTION_NAME_KEY"`
}

// normalize trims whitespace from the target names, drops empty entries and
// applies defaults.
func (cfg *Config) normalize() {
	targets := cfg.TargetFunctionNames[:0]
	for _, name := range cfg.TargetFunctionNames {
		if name = strings.TrimSpace(name); name != "" {
			targets = append(targets, name)
		}
	}
	cfg.TargetFunctionNames = targets

	if cfg.FunctionKey == "" {
		cfg.FunctionKey = defaultFunctionKey
	}
}

// enabled reports whether the configuration is complete enough to annotate.
// An incomplete configuration is not an error: records still round-trip
// through the codec unmodified.
func (cfg *Config) enabled() bool {
	return len(cfg.TargetFunctionNames) > 0 && cfg.AttributeKey != "" && cfg.AttributeValue != ""
}

// rule compiles the configuration into the matching rule used per record.
func (cfg *Config) rule() augment.Rule {
	return augment.NewRule(
		cfg.FunctionKey,
		cfg.TargetFunctionNames,
		[]augment.Attribute{{Key: cfg.AttributeKey, Value: cfg.AttributeValue}},
	)
}
