// Package costs tracks estimated upstream spend. A Ledger records
// per-call samples and answers aggregate and rolling-window queries.
package costs

import (
	"sync"
	"time"
)

// Kind labels the upstream operation a cost sample belongs to.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindCompletion    Kind = "completion"
)

// Pricing used for estimates, in USD.
const (
	transcriptionPerMinute = 0.006
	completionPer1KTokens  = 0.03
)

// EstimateTranscription returns the estimated cost of transcribing
// audio of the given duration.
func EstimateTranscription(duration time.Duration) float64 {
	return duration.Minutes() * transcriptionPerMinute
}

// EstimateCompletion returns the estimated cost of a completion that
// consumed the given total token count.
func EstimateCompletion(totalTokens int) float64 {
	return float64(totalTokens) / 1000 * completionPer1KTokens
}

// Sample is a single recorded cost.
type Sample struct {
	Kind Kind
	USD  float64
	At   time.Time
}

// Summary is an aggregate view of recorded costs.
type Summary struct {
	TotalUSD float64
	ByKind   map[Kind]float64
	Calls    int
	Since    time.Time
}

// Ledger accumulates cost samples. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	samples []Sample
	since   time.Time
	now     func() time.Time
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return newLedgerAt(time.Now)
}

func newLedgerAt(now func() time.Time) *Ledger {
	return &Ledger{since: now(), now: now}
}

// Record adds a sample for the given kind and amount. Zero and
// negative amounts are ignored.
func (l *Ledger) Record(kind Kind, usd float64) {
	if usd <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, Sample{Kind: kind, USD: usd, At: l.now()})
}

// Summary returns totals over all samples since the last reset.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{ByKind: make(map[Kind]float64), Since: l.since}
	for _, sample := range l.samples {
		s.TotalUSD += sample.USD
		s.ByKind[sample.Kind] += sample.USD
		s.Calls++
	}
	return s
}

// WindowCost returns the total recorded within the trailing window d.
func (l *Ledger) WindowCost(d time.Duration) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-d)
	var total float64
	for _, sample := range l.samples {
		if sample.At.After(cutoff) {
			total += sample.USD
		}
	}
	return total
}

// Reset discards all samples and restarts the accounting period.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = nil
	l.since = l.now()
}
