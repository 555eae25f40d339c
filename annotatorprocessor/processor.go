package annotatorprocessor

import (
	"context"
	"time"

	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.uber.org/zap"

	"github.com/ziggurat-data/firehose-otlp-annotator/internal/augment"
)

// annotatorProcessor appends synthetic summary metrics for matched Lambda
// functions. It is stateless across batches: deduplication is scoped to one
// instrumentation scope within one batch.
type annotatorProcessor struct {
	rule   augment.Rule
	logger *zap.Logger
	now    func() time.Time
}

func newAnnotator(cfg *Config, logger *zap.Logger) *annotatorProcessor {
	return &annotatorProcessor{
		rule:   cfg.rule(),
		logger: logger,
		now:    time.Now,
	}
}

// processMetrics annotates one batch in place.
func (p *annotatorProcessor) processMetrics(_ context.Context, md pmetric.Metrics) (pmetric.Metrics, error) {
	if n := augment.Annotate(md, p.rule, p.now()); n > 0 {
		p.logger.Debug("Appended synthetic metrics", zap.Int("metric_count", n))
	}
	return md, nil
}
