package observability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client the flusher needs.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ CloudWatchAPI = (*cloudwatch.Client)(nil)

// maxDatumsPerCall stays under the PutMetricData request limit.
const maxDatumsPerCall = 500

// After flushFailureThreshold consecutive failed calls, flushes are skipped
// for flushPause. Unsent deltas carry over to the next flush.
const (
	flushFailureThreshold = 3
	flushPause            = 5 * time.Minute
)

// CloudWatchFlusher pushes what the Prometheus registry gathered since the last
// flush to CloudWatch. Lambda functions expose no scrape endpoint, so each
// invocation flushes before returning.
type CloudWatchFlusher struct {
	client    CloudWatchAPI
	gatherer  prometheus.Gatherer
	namespace string
	logger    *zap.Logger
	breaker   *gobreaker.CircuitBreaker

	mu   sync.Mutex
	sent map[string]float64
	now  func() time.Time
}

// NewCloudWatchFlusher creates a flusher. A nil client disables flushing.
func NewCloudWatchFlusher(client CloudWatchAPI, gatherer prometheus.Gatherer, namespace string, logger *zap.Logger) *CloudWatchFlusher {
	return &CloudWatchFlusher{
		client:    client,
		gatherer:  gatherer,
		namespace: namespace,
		logger:    logger,
		breaker:   gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "cloudwatch-flush",
			MaxRequests: 1,
			Timeout:     flushPause,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= flushFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Metrics flush circuit changed state",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		sent: make(map[string]float64),
		now:  time.Now,
	}
}

// Flush publishes counter increments and histogram sums/counts observed since
// the previous flush. Metrics that did not move are skipped.
func (f *CloudWatchFlusher) Flush(ctx context.Context) error {
	if f == nil || f.client == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("metrics flush suspended: %w", gobreaker.ErrOpenState)
	}

	families, err := f.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	timestamp := f.now()
	var (
		data    []types.MetricDatum
		pending []sentValue
	)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			dimensions := toDimensions(metric.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				data, pending = f.appendDelta(data, pending, family.GetName(), dimensions, metric.GetCounter().GetValue(), types.StandardUnitCount, timestamp)
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				data, pending = f.appendDelta(data, pending, family.GetName()+"_count", dimensions, float64(h.GetSampleCount()), types.StandardUnitCount, timestamp)
				data, pending = f.appendDelta(data, pending, family.GetName()+"_sum", dimensions, h.GetSampleSum(), types.StandardUnitSeconds, timestamp)
			}
		}
	}

	// A series counts as sent only once its batch is accepted, so deltas of a
	// failed or skipped batch are sent again by the next flush.
	for start := 0; start < len(data); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(data) {
			end = len(data)
		}
		batch := data[start:end]
		_, err := f.breaker.Execute(func() (interface{}, error) {
			return f.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
				Namespace:  aws.String(f.namespace),
				MetricData: batch,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to put metric data: %w", err)
		}
		for _, sv := range pending[start:end] {
			f.sent[sv.key] = sv.value
		}
	}

	f.logger.Debug("Flushed metrics to CloudWatch",
		zap.String("namespace", f.namespace),
		zap.Int("datums", len(data)),
	)
	return nil
}

// sentValue is the cumulative value a series reaches once its datum is accepted.
type sentValue struct {
	key   string
	value float64
}

func (f *CloudWatchFlusher) appendDelta(data []types.MetricDatum, pending []sentValue, name string, dimensions []types.Dimension, value float64, unit types.StandardUnit, ts time.Time) ([]types.MetricDatum, []sentValue) {
	key := seriesKey(name, dimensions)
	delta := value - f.sent[key]
	if delta <= 0 {
		return data, pending
	}

	data = append(data, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dimensions,
		Value:      aws.Float64(delta),
		Unit:       unit,
		Timestamp:  aws.Time(ts),
	})
	return data, append(pending, sentValue{key: key, value: value})
}

func toDimensions(labels []*dto.LabelPair) []types.Dimension {
	dimensions := make([]types.Dimension, 0, len(labels))
	for _, label := range labels {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(label.GetName()),
			Value: aws.String(label.GetValue()),
		})
	}
	sort.Slice(dimensions, func(i, j int) bool {
		return aws.ToString(dimensions[i].Name) < aws.ToString(dimensions[j].Name)
	})
	return dimensions
}

func seriesKey(name string, dimensions []types.Dimension) string {
	var b strings.Builder
	b.WriteString(name)
	for _, d := range dimensions {
		b.WriteString("|")
		b.WriteString(aws.ToString(d.Name))
		b.WriteString("=")
		b.WriteString(aws.ToString(d.Value))
	}
	return b.String()
}
