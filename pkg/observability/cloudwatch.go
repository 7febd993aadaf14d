package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const (
	// maxDatumsPerPut is the PutMetricData per-request limit.
	maxDatumsPerPut = 1000
	// maxBuffered caps the datums held between flushes; older ones are
	// dropped first.
	maxBuffered = 5000
)

// CloudWatchAPI is the part of the CloudWatch client the metrics sink calls.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers measurements and ships them with Flush. It is
// meant for Lambda, where each instance lives too briefly to be scraped:
// observations never do I/O, and the handler flushes before returning.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	buffer  []types.MetricDatum
	dropped int
}

var _ Recorder = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a sink publishing under namespace.
func NewCloudWatchMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// ObserveHTTP records one served request.
func (m *CloudWatchMetrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	dims := []types.Dimension{dimension("Route", route), dimension("Method", method)}
	m.add(
		m.datum("HTTPRequests", 1, types.StandardUnitCount, append(dims, dimension("Status", strconv.Itoa(status)))...),
		m.datum("HTTPLatency", milliseconds(duration), types.StandardUnitMilliseconds, dims...),
	)
}

// ObserveQuery records one query dispatch.
func (m *CloudWatchMetrics) ObserveQuery(queryType string, duration time.Duration, err error) {
	m.add(
		m.datum("QueryCount", 1, types.StandardUnitCount, dimension("QueryType", queryType), dimension("Status", outcome(err))),
		m.datum("QueryLatency", milliseconds(duration), types.StandardUnitMilliseconds, dimension("QueryType", queryType)),
	)
}

// ObserveLLM records one completion request.
func (m *CloudWatchMetrics) ObserveLLM(duration time.Duration, err error) {
	m.add(
		m.datum("LLMRequests", 1, types.StandardUnitCount, dimension("Status", outcome(err))),
		m.datum("LLMLatency", milliseconds(duration), types.StandardUnitMilliseconds),
	)
}

// Pending returns the number of buffered datums.
func (m *CloudWatchMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

// Flush sends everything buffered. Datums of a failed request are dropped
// rather than retried, so a CloudWatch outage cannot grow the buffer.
func (m *CloudWatchMetrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.buffer
	dropped := m.dropped
	m.buffer = nil
	m.dropped = 0
	m.mu.Unlock()

	if dropped > 0 {
		m.logger.Warn("CloudWatch metrics dropped before flush", zap.Int("count", dropped))
	}

	var failed int
	var firstErr error
	for start := 0; start < len(batch); start += maxDatumsPerPut {
		end := min(start+maxDatumsPerPut, len(batch))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			failed += end - start
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		m.logger.Error("Failed to send metrics", zap.Int("datums", failed), zap.Error(firstErr))
		return fmt.Errorf("put metric data: %w", firstErr)
	}
	return nil
}

func (m *CloudWatchMetrics) add(datums ...types.MetricDatum) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = append(m.buffer, datums...)
	if over := len(m.buffer) - maxBuffered; over > 0 {
		m.buffer = append(m.buffer[:0], m.buffer[over:]...)
		m.dropped += over
	}
}

func (m *CloudWatchMetrics) datum(name string, value float64, unit types.StandardUnit, dims ...types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
