package integration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/logger"
)

// TxStatus is the outcome of a traced transaction.
type TxStatus string

const (
	TxSuccess TxStatus = "success"
	TxFail    TxStatus = "fail"
)

// Transaction is one traced call against an integration point. Duration is
// nil for simulated failures where no real call was timed.
type Transaction struct {
	ID          string         `json:"id"`
	Integration string         `json:"integration"`
	Status      TxStatus       `json:"status"`
	Duration    *time.Duration `json:"duration,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	FailType    string         `json:"fail_type,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// PatternKind classifies recent transaction history.
type PatternKind string

const (
	PatternNone       PatternKind = "none"
	PatternRepeated   PatternKind = "repeated_failure"
	PatternOccasional PatternKind = "occasional_failure"
)

// FailurePattern is the result of pattern detection.
type FailurePattern struct {
	Kind  PatternKind `json:"kind"`
	Count int         `json:"count"`
}

// MonitorConfig tunes failure pattern detection. Detection is deterministic:
// the same transaction sequence always classifies the same way.
type MonitorConfig struct {
	// PatternWindow is how many trailing transactions detection examines.
	PatternWindow int
	// RepeatThreshold is the trailing consecutive-failure count that
	// classifies as repeated_failure.
	RepeatThreshold int
}

// ApplyDefaults fills zero fields.
func (c *MonitorConfig) ApplyDefaults() {
	if c.PatternWindow <= 0 {
		c.PatternWindow = 10
	}
	if c.RepeatThreshold <= 0 {
		c.RepeatThreshold = 3
	}
}

// Monitor traces transactions per integration and keeps an append-only
// metrics history per component.
type Monitor struct {
	mu             sync.RWMutex
	transactions   map[string][]Transaction
	metricsHistory map[string][]map[string]any

	cfg MonitorConfig
	log *logger.Logger
}

// NewMonitor creates an integration monitor.
func NewMonitor(cfg MonitorConfig) *Monitor {
	cfg.ApplyDefaults()
	return &Monitor{
		transactions:   make(map[string][]Transaction),
		metricsHistory: make(map[string][]map[string]any),
		cfg:            cfg,
		log:            logger.GetGlobalLogger().WithComponent("integration"),
	}
}

// TxOption sets optional transaction fields.
type TxOption func(*Transaction)

// WithFailType tags a failed transaction with a failure classification.
func WithFailType(ft string) TxOption {
	return func(t *Transaction) { t.FailType = ft }
}

// WithDetails attaches free-form details.
func WithDetails(d map[string]any) TxOption {
	return func(t *Transaction) { t.Details = d }
}

// RecordTransaction appends a transaction to the integration's history.
// Pass a nil duration for simulated failures.
func (m *Monitor) RecordTransaction(integration string, status TxStatus, duration *time.Duration, opts ...TxOption) Transaction {
	tx := Transaction{
		ID:          uuid.NewString(),
		Integration: integration,
		Status:      status,
		Duration:    duration,
		Timestamp:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&tx)
	}

	m.mu.Lock()
	m.transactions[integration] = append(m.transactions[integration], tx)
	m.mu.Unlock()

	if status == TxFail {
		m.log.Debug("transaction failed", logger.Fields(
			logger.FieldIntegration, integration,
			"fail_type", tx.FailType,
		))
	}
	return tx
}

// Transactions returns the full ordered transaction history.
func (m *Monitor) Transactions(integration string) []Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := m.transactions[integration]
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}

// SetMetrics appends a metrics record to the component's history. Records
// are never overwritten: MetricsHistory returns every version in set order.
func (m *Monitor) SetMetrics(componentID string, record map[string]any) {
	cp := make(map[string]any, len(record))
	for k, v := range record {
		cp[k] = v
	}

	m.mu.Lock()
	m.metricsHistory[componentID] = append(m.metricsHistory[componentID], cp)
	m.mu.Unlock()
}

// MetricsHistory returns every metrics record set for the component, in the
// order they were set.
func (m *Monitor) MetricsHistory(componentID string) []map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.metricsHistory[componentID]
	out := make([]map[string]any, len(history))
	copy(out, history)
	return out
}

// DetectFailurePatterns classifies the trailing transaction window:
// RepeatThreshold or more consecutive trailing failures is repeated_failure
// with the consecutive count, any other failure in the window is
// occasional_failure with the window failure count, otherwise none.
func (m *Monitor) DetectFailurePatterns(integration string) FailurePattern {
	m.mu.RLock()
	txs := m.transactions[integration]
	window := txs
	if len(window) > m.cfg.PatternWindow {
		window = window[len(window)-m.cfg.PatternWindow:]
	}

	trailing := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Status != TxFail {
			break
		}
		trailing++
	}
	total := 0
	for _, tx := range window {
		if tx.Status == TxFail {
			total++
		}
	}
	m.mu.RUnlock()

	switch {
	case trailing >= m.cfg.RepeatThreshold:
		return FailurePattern{Kind: PatternRepeated, Count: trailing}
	case total > 0:
		return FailurePattern{Kind: PatternOccasional, Count: total}
	default:
		return FailurePattern{Kind: PatternNone}
	}
}

// HealthScore returns successes over total transactions in [0,1]. An
// integration with no transactions has an undefined score and errors.
func (m *Monitor) HealthScore(integration string) (float64, error) {
	m.mu.RLock()
	txs := m.transactions[integration]
	m.mu.RUnlock()

	if len(txs) == 0 {
		return 0, errors.NoTransactions(integration)
	}
	successes := 0
	for _, tx := range txs {
		if tx.Status == TxSuccess {
			successes++
		}
	}
	return float64(successes) / float64(len(txs)), nil
}
