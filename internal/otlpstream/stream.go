// Package otlpstream encodes and decodes the CloudWatch Metric Streams
// OpenTelemetry record format: a concatenation of varint length-prefixed
// ExportMetricsServiceRequest messages.
//
// More details can be found at:
// https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch-metric-streams-formats-opentelemetry-100.html
package otlpstream

import (
	"errors"
	"fmt"

	"github.com/gogo/protobuf/proto"
	"go.opentelemetry.io/collector/pdata/pmetric/pmetricotlp"
)

var (
	// ErrTruncatedLength indicates a length prefix that ends before the
	// varint is complete.
	ErrTruncatedLength = errors.New("truncated length prefix")

	// ErrFrameOverrun indicates a length prefix that declares more bytes
	// than remain in the buffer.
	ErrFrameOverrun = errors.New("frame length exceeds remaining data")
)

// SplitFrames splits data into its length-prefixed frames. The buffer must
// consist of whole frames only; a trailing partial frame is an error.
func SplitFrames(data []byte) ([][]byte, error) {
	var frames [][]byte
	pos := 0
	for pos < len(data) {
		msgLen, prefixLen := proto.DecodeVarint(data[pos:])
		if prefixLen == 0 {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncatedLength, pos)
		}
		pos += prefixLen
		if msgLen > uint64(len(data)-pos) {
			return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
				ErrFrameOverrun, msgLen, pos, len(data)-pos)
		}
		frames = append(frames, data[pos:pos+int(msgLen)])
		pos += int(msgLen)
	}
	return frames, nil
}

// JoinFrames is the inverse of SplitFrames: it prefixes each frame with its
// varint-encoded length and concatenates the results in order.
func JoinFrames(frames [][]byte) []byte {
	size := 0
	for _, frame := range frames {
		size += len(proto.EncodeVarint(uint64(len(frame)))) + len(frame)
	}
	buf := make([]byte, 0, size)
	for _, frame := range frames {
		buf = append(buf, proto.EncodeVarint(uint64(len(frame)))...)
		buf = append(buf, frame...)
	}
	return buf
}

// Decode splits data into frames and unmarshals each one as an OTLP metrics
// export request. Schema validation is delegated to pdata.
func Decode(data []byte) ([]pmetricotlp.ExportRequest, error) {
	frames, err := SplitFrames(data)
	if err != nil {
		return nil, err
	}
	reqs := make([]pmetricotlp.ExportRequest, 0, len(frames))
	for i, frame := range frames {
		req := pmetricotlp.NewExportRequest()
		if err := req.UnmarshalProto(frame); err != nil {
			return nil, fmt.Errorf("unmarshal export request %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Encode marshals each export request and joins them back into a single
// length-prefixed stream, preserving order.
func Encode(reqs []pmetricotlp.ExportRequest) ([]byte, error) {
	frames := make([][]byte, 0, len(reqs))
	for i, req := range reqs {
		frame, err := req.MarshalProto()
		if err != nil {
			return nil, fmt.Errorf("marshal export request %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return JoinFrames(frames), nil
}
