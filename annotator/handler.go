// Package annotator implements the Kinesis Firehose transform that annotates
// CloudWatch metric-stream OTLP records with custom attributes.
package annotator

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/ziggurat-data/firehose-otlp-annotator/internal/augment"
	"github.com/ziggurat-data/firehose-otlp-annotator/internal/otlpstream"
)

// Handler processes one Firehose transformation event at a time. Records are
// handled sequentially and independently: a record that fails to decode or
// re-encode is returned unmodified with a ProcessingFailed result and never
// affects its neighbors.
type Handler struct {
	rule    augment.Rule
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a handler from the given configuration. The
// configuration is normalized and compiled once; the handler never consults
// the environment afterwards.
func NewHandler(cfg Config, logger *zap.Logger) *Handler {
	cfg.normalize()

	enabled := cfg.enabled()
	if !enabled {
		logger.Warn("Annotation disabled: TARGET_FUNCTION_NAMES, ATTRIBUTE_KEY and ATTRIBUTE_VALUE must all be set; records will pass through unmodified")
	} else {
		logger.Info("Annotation enabled",
			zap.Strings("target_function_names", cfg.TargetFunctionNames),
			zap.String("function_key", cfg.FunctionKey),
			zap.String("attribute_key", cfg.AttributeKey),
		)
	}

	return &Handler{
		rule:    cfg.rule(),
		enabled: enabled,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle transforms every record of a Firehose event, preserving order and
// count. It never returns an error for a malformed record; failure is
// reported per record through the response.
func (h *Handler) Handle(_ context.Context, event events.KinesisFirehoseEvent) (events.KinesisFirehoseResponse, error) {
	response := events.KinesisFirehoseResponse{
		Records: make([]events.KinesisFirehoseResponseRecord, 0, len(event.Records)),
	}

	for _, record := range event.Records {
		data, err := h.transform(record.Data)
		if err != nil {
			h.logger.Error("Record processing failed",
				zap.String("record_id", record.RecordID),
				zap.Error(err),
			)
			response.Records = append(response.Records, events.KinesisFirehoseResponseRecord{
				RecordID: record.RecordID,
				Result:   events.KinesisFirehoseTransformedStateProcessingFailed,
				Data:     record.Data,
			})
			continue
		}
		response.Records = append(response.Records, events.KinesisFirehoseResponseRecord{
			RecordID: record.RecordID,
			Result:   events.KinesisFirehoseTransformedStateOk,
			Data:     data,
		})
	}

	h.logger.Info("Processed records", zap.Int("record_count", len(response.Records)))
	return response, nil
}

// transform runs one record payload through decode, annotate and encode.
// When annotation is disabled the payload still round-trips through the
// codec, so the output is semantically equivalent but not byte-identical.
func (h *Handler) transform(data []byte) ([]byte, error) {
	requests, err := otlpstream.Decode(data)
	if err != nil {
		return nil, err
	}

	if h.enabled {
		now := h.now()
		for _, request := range requests {
			if n := augment.Annotate(request.Metrics(), h.rule, now); n > 0 {
				h.logger.Info("Appended synthetic metrics", zap.Int("metric_count", n))
			}
		}
	}

	return otlpstream.Encode(requests)
}
