package engine

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"latbot/internal/logger"
	"latbot/internal/metrics"
	"latbot/internal/models"
)

// Summary is emitted once per request when its acknowledgment sequence
// completes: every per-response latency, the inter-response delta when at
// least two acks arrived, and the final status.
type Summary struct {
	ReqID     string
	Status    string
	Latencies []time.Duration
	Delta     time.Duration
	Responses int
}

type pendingRequest struct {
	sentAt    time.Time
	latencies []time.Duration
}

// Recorder tracks outstanding requests by ID. A request is inserted at send
// time, accumulates response latencies, and is removed on the terminal
// response (second ack, or a definitive accept/reject status). Responses for
// unknown IDs are ignored, which also makes late duplicates harmless.
type Recorder struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest

	log       *logger.Logger
	onSummary func(Summary)
}

// NewRecorder creates a recorder. onSummary may be nil; summaries are always
// logged and observed in metrics.
func NewRecorder(log *logger.Logger, onSummary func(Summary)) *Recorder {
	return &Recorder{
		pending:   make(map[string]*pendingRequest),
		log:       log,
		onSummary: onSummary,
	}
}

func (r *Recorder) OnSent(reqID string, sentAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[reqID]; ok {
		r.log.WithRequestID(reqID).Warn("Request id already pending, keeping the original record.")
		return
	}
	r.pending[reqID] = &pendingRequest{sentAt: sentAt}
}

func (r *Recorder) OnResponse(reqID string, receivedAt time.Time, status string, result json.RawMessage) {
	r.mu.Lock()
	req, ok := r.pending[reqID]
	if !ok {
		r.mu.Unlock()
		r.log.WithRequestID(reqID).Debug("Response for untracked request id, ignoring.")
		return
	}

	latency := receivedAt.Sub(req.sentAt)
	req.latencies = append(req.latencies, latency)
	idx := len(req.latencies)

	terminal := idx >= 2 || status == models.StatusOrderAccepted || status == models.StatusOrderRejected

	var summary Summary
	if terminal {
		summary = Summary{
			ReqID:     reqID,
			Status:    status,
			Latencies: req.latencies,
			Responses: idx,
		}
		if idx >= 2 {
			summary.Delta = req.latencies[idx-1] - req.latencies[0]
		}
		delete(r.pending, reqID)
	}
	r.mu.Unlock()

	metrics.OrderAcks.WithLabelValues(status).Inc()
	metrics.AckLatency.WithLabelValues(strconv.Itoa(idx)).Observe(latency.Seconds())

	r.log.WithRequestID(reqID).WithFields(map[string]interface{}{
		"response":   idx,
		"status":     status,
		"latency_ms": ms(latency),
	}).Info("Order response latency.")

	if terminal {
		r.emit(summary)
	}
}

// Pending reports whether a request id is still tracked.
func (r *Recorder) Pending(reqID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[reqID]
	return ok
}

func (r *Recorder) emit(s Summary) {
	fields := map[string]interface{}{
		"status":    s.Status,
		"responses": s.Responses,
	}
	for i, lat := range s.Latencies {
		fields["response_"+strconv.Itoa(i+1)+"_ms"] = ms(lat)
	}
	if s.Responses >= 2 {
		fields["delta_ms"] = ms(s.Delta)
	}
	r.log.WithRequestID(s.ReqID).WithFields(fields).Info("Latency summary.")

	if r.onSummary != nil {
		r.onSummary(s)
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
