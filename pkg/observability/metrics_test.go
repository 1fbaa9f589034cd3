package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, in)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestMetrics_BuffersUntilFlush(t *testing.T) {
	cw := &mockCloudWatch{}
	var sent *cloudwatch.PutMetricDataInput
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(nil).Once()

	m := NewMetrics("TitleChain", cw, 0, zap.NewNop())
	m.Increment("command_count", "PlaceActCommand")
	m.StartTimer("command_duration", "PlaceActCommand").Stop()
	m.RecordGauge("live_canvases", 3)

	assert.Equal(t, 3, m.Buffered())
	cw.AssertNotCalled(t, "PutMetricData", mock.Anything, mock.Anything)

	require.NoError(t, m.Flush(context.Background()))
	assert.Equal(t, 0, m.Buffered())

	require.NotNil(t, sent)
	assert.Equal(t, "TitleChain", aws.ToString(sent.Namespace))
	require.Len(t, sent.MetricData, 3)
	assert.Equal(t, "command_count", aws.ToString(sent.MetricData[0].MetricName))
	require.Len(t, sent.MetricData[0].Dimensions, 1)
	assert.Equal(t, "PlaceActCommand", aws.ToString(sent.MetricData[0].Dimensions[0].Value))
	assert.Empty(t, sent.MetricData[2].Dimensions)

	cw.AssertExpectations(t)
}

func TestMetrics_FlushErrorDropsBuffer(t *testing.T) {
	cw := &mockCloudWatch{}
	cw.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	m := NewMetrics("TitleChain", cw, 0, zap.NewNop())
	m.Increment("query_count", "GetCanvasQuery")

	assert.Error(t, m.Flush(context.Background()))
	assert.Equal(t, 0, m.Buffered())
}

func TestMetrics_NilClientIsNoop(t *testing.T) {
	m := NewMetrics("TitleChain", nil, 0, zap.NewNop())
	m.Increment("command_count", "x")
	m.StartTimer("command_duration", "x").Stop()

	assert.Equal(t, 0, m.Buffered())
	assert.NoError(t, m.Flush(context.Background()))
	assert.NoError(t, m.Close())
}

func TestTracer_DisabledRunsUntraced(t *testing.T) {
	tracer := NewTracer("titlechain", false)

	called := false
	err := tracer.TraceFunction(context.Background(), "op", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, tracer.Enabled())
}
