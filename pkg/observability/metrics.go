package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxBufferedDatums triggers an early flush
const maxBufferedDatums = 500

// CloudWatchAPI is the subset of the CloudWatch client Metrics uses
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Timer reports the elapsed time when stopped
type Timer interface {
	Stop()
}

// Metrics buffers counters and timings and ships them to CloudWatch in
// batches. With a nil client every call is a no-op.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMetrics creates a new metrics instance. A positive flushInterval
// starts a background flusher that Close stops.
func NewMetrics(namespace string, client CloudWatchAPI, flushInterval time.Duration, logger *zap.Logger) *Metrics {
	m := &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	if client != nil && flushInterval > 0 {
		go m.flushLoop(flushInterval)
	} else {
		close(m.done)
	}
	return m
}

// Increment adds one to a counter, dimensioned by operation
func (m *Metrics) Increment(metric, label string) {
	m.record(metric, label, 1, types.StandardUnitCount)
}

// StartTimer measures until Stop and records milliseconds
func (m *Metrics) StartTimer(metric, label string) Timer {
	return &timer{metrics: m, metric: metric, label: label, start: time.Now()}
}

// RecordGauge records an absolute value such as the number of live canvases
func (m *Metrics) RecordGauge(metric string, value float64) {
	m.record(metric, "", value, types.StandardUnitCount)
}

// Buffered returns how many datums wait for the next flush
func (m *Metrics) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

func (m *Metrics) record(metric, label string, value float64, unit types.StandardUnit) {
	if m == nil || m.client == nil {
		return
	}

	datum := types.MetricDatum{
		MetricName: aws.String(metric),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
	}
	if label != "" {
		datum.Dimensions = []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(label)},
		}
	}

	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	full := len(m.buffer) >= maxBufferedDatums
	m.mu.Unlock()

	if full {
		go func() {
			if err := m.Flush(context.Background()); err != nil {
				m.logger.Warn("Failed to flush metrics", zap.Error(err))
			}
		}()
	}
}

// Flush sends buffered datums to CloudWatch. Datums are dropped when the
// call fails; metrics are best effort.
func (m *Metrics) Flush(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}

	m.mu.Lock()
	pending := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	// CloudWatch accepts at most 1000 datums per call
	const perCall = 1000
	for i := 0; i < len(pending); i += perCall {
		end := i + perCall
		if end > len(pending) {
			end = len(pending)
		}
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[i:end],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops the background flusher and sends what is left
func (m *Metrics) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Flush(ctx)
}

func (m *Metrics) flushLoop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if err := m.Flush(context.Background()); err != nil {
				m.logger.Warn("Failed to flush metrics", zap.Error(err))
			}
		}
	}
}

type timer struct {
	metrics *Metrics
	metric  string
	label   string
	start   time.Time
}

func (t *timer) Stop() {
	t.metrics.record(t.metric, t.label, float64(time.Since(t.start).Milliseconds()), types.StandardUnitMilliseconds)
}
