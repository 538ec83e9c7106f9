package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	askRulesTotal atomic.Uint64
	askAITotal    atomic.Uint64
	askErrorTotal atomic.Uint64

	recommendationsServedTotal atomic.Uint64

	reportJobsReceivedTotal  atomic.Uint64
	reportJobsCompletedTotal atomic.Uint64
	reportJobsFailedTotal    atomic.Uint64
	reportJobsDeletedTotal   atomic.Uint64

	askDuration    = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
	reportDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAskRules increments the rule-answered ask counter.
func IncAskRules() {
	askRulesTotal.Add(1)
}

// IncAskAI increments the AI-answered ask counter.
func IncAskAI() {
	askAITotal.Add(1)
}

// IncAskError increments the counter for asks that ended in an error answer.
func IncAskError() {
	askErrorTotal.Add(1)
}

// AddRecommendationsServed adds n to the served-recommendation counter.
func AddRecommendationsServed(n int) {
	if n <= 0 {
		return
	}
	recommendationsServedTotal.Add(uint64(n))
}

// IncReportJobReceived increments the received counter.
func IncReportJobReceived() {
	reportJobsReceivedTotal.Add(1)
}

// IncReportJobCompleted increments the completed counter.
func IncReportJobCompleted() {
	reportJobsCompletedTotal.Add(1)
}

// IncReportJobFailed increments the failed counter.
func IncReportJobFailed() {
	reportJobsFailedTotal.Add(1)
}

// IncReportJobDeleted increments the deleted-message counter.
func IncReportJobDeleted() {
	reportJobsDeletedTotal.Add(1)
}

// ObserveAskDurationMs records an ask duration in milliseconds.
func ObserveAskDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	askDuration.Observe(value)
}

// ObserveReportDurationMs records a report build duration in milliseconds.
func ObserveReportDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	reportDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ask_rules_total", "Total asks answered by the rule engine", askRulesTotal.Load())
	writeCounter(&buf, "ask_ai_total", "Total asks answered by the AI fallback", askAITotal.Load())
	writeCounter(&buf, "ask_error_total", "Total asks that ended in an error answer", askErrorTotal.Load())
	writeCounter(&buf, "recommendations_served_total", "Total recommendations returned to players", recommendationsServedTotal.Load())
	writeCounter(&buf, "report_jobs_received_total", "Total report jobs received", reportJobsReceivedTotal.Load())
	writeCounter(&buf, "report_jobs_completed_total", "Total report jobs completed", reportJobsCompletedTotal.Load())
	writeCounter(&buf, "report_jobs_failed_total", "Total report jobs failed", reportJobsFailedTotal.Load())
	writeCounter(&buf, "report_jobs_deleted_total", "Total report job messages deleted", reportJobsDeletedTotal.Load())
	writeHistogram(&buf, "ask_duration_ms", "Ask handling duration in milliseconds", askDuration.Snapshot())
	writeHistogram(&buf, "report_duration_ms", "Report build duration in milliseconds", reportDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
