package otlpstream

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pmetric"
)

// frameMetrics serializes metrics and adds a uvarint prefix, building one
// frame the way Firehose delivers it.
func frameMetrics(t *testing.T, md pmetric.Metrics) []byte {
	t.Helper()

	marshaler := pmetric.ProtoMarshaler{}
	data, err := marshaler.MarshalMetrics(md)
	require.NoError(t, err)

	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, uint64(len(data)))
	return append(buf[:n], data...)
}

func testMetrics(metricName string) pmetric.Metrics {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName(metricName)
	dp := m.SetEmptyGauge().DataPoints().AppendEmpty()
	dp.SetDoubleValue(42.0)
	dp.Attributes().PutStr("FunctionName", "f1")
	return md
}

func TestSplitFrames(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		data       []byte
		wantFrames [][]byte
		wantErr    error
	}{
		"WithEmptyBuffer": {
			data: nil,
		},
		"WithSingleFrame": {
			data:       []byte{0x03, 0x0a, 0x0b, 0x0c},
			wantFrames: [][]byte{{0x0a, 0x0b, 0x0c}},
		},
		"WithZeroLengthFrame": {
			data:       []byte{0x00},
			wantFrames: [][]byte{{}},
		},
		"WithTruncatedLengthPrefix": {
			data:    []byte{0x80},
			wantErr: ErrTruncatedLength,
		},
		"WithOverrunningFrame": {
			data:    []byte{0x05, 0x01, 0x02},
			wantErr: ErrFrameOverrun,
		},
		"WithTrailingPartialFrame": {
			data:    []byte{0x01, 0x0a, 0x04, 0x01},
			wantErr: ErrFrameOverrun,
		},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			frames, err := SplitFrames(testCase.data)
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, frames, len(testCase.wantFrames))
			for i, want := range testCase.wantFrames {
				require.Equal(t, want, frames[i])
			}
		})
	}
}

func TestJoinFramesRoundTrip(t *testing.T) {
	t.Parallel()

	frames := [][]byte{
		{0x01, 0x02, 0x03},
		{},
		{0xff},
	}
	got, err := SplitFrames(JoinFrames(frames))
	require.NoError(t, err)
	require.Len(t, got, len(frames))
	for i, want := range frames {
		require.Equal(t, want, got[i])
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	stream := append(frameMetrics(t, testMetrics("first")), frameMetrics(t, testMetrics("second"))...)

	reqs, err := Decode(stream)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.Equal(t, "first", reqs[0].Metrics().ResourceMetrics().At(0).ScopeMetrics().At(0).Metrics().At(0).Name())
	require.Equal(t, "second", reqs[1].Metrics().ResourceMetrics().At(0).ScopeMetrics().At(0).Metrics().At(0).Name())

	out, err := Encode(reqs)
	require.NoError(t, err)
	require.Equal(t, stream, out)
}

func TestDecodeEmptyStream(t *testing.T) {
	t.Parallel()

	reqs, err := Decode(nil)
	require.NoError(t, err)
	require.Empty(t, reqs)
}

func TestDecodeMalformedMessage(t *testing.T) {
	t.Parallel()

	// 0xff is an invalid protobuf tag, so the frame splits but the
	// message does not unmarshal.
	_, err := Decode(JoinFrames([][]byte{{0xff}}))
	require.ErrorContains(t, err, "unmarshal export request")
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	out, err := Encode(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
