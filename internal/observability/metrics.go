package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Metrics is the counter registry for the trust core. Counters are exposed
// in Prometheus text format via WritePrometheus.
type Metrics struct {
	detectorRuns  *CounterVec
	verdicts      *CounterVec
	substitutions *CounterVec
	flagsWritten  *CounterVec
	trustComputed *Counter
	sweepRuns     *Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Init() *Metrics {
	initOnce.Do(func() {
		instance = &Metrics{
			detectorRuns: NewCounterVec("trust_detector_runs_total",
				"Detector invocations by detector name.", []string{"detector"}),
			verdicts: NewCounterVec("trust_detector_verdicts_total",
				"Detector verdicts by detector and recommendation.", []string{"detector", "recommendation"}),
			substitutions: NewCounterVec("trust_default_substitutions_total",
				"Neutral-default substitutions by component and reason.", []string{"component", "reason"}),
			flagsWritten: NewCounterVec("trust_abuse_flags_written_total",
				"Abuse flags persisted by flag type and severity.", []string{"flag_type", "severity"}),
			trustComputed: NewCounter("trust_scores_computed_total",
				"Completed trust score computations."),
			sweepRuns: NewCounter("trust_sweep_runs_total",
				"Periodic trust sweep executions."),
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func (m *Metrics) ObserveDetectorRun(detector, recommendation string) {
	if m == nil {
		return
	}
	m.detectorRuns.Inc(detector)
	m.verdicts.Inc(detector, recommendation)
}

func (m *Metrics) ObserveSubstitution(component, reason string) {
	if m == nil {
		return
	}
	m.substitutions.Inc(component, reason)
}

func (m *Metrics) ObserveFlagWritten(flagType, severity string) {
	if m == nil {
		return
	}
	m.flagsWritten.Inc(flagType, severity)
}

func (m *Metrics) ObserveTrustComputed() {
	if m == nil {
		return
	}
	m.trustComputed.Inc()
}

func (m *Metrics) ObserveSweepRun() {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	if err := m.detectorRuns.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.verdicts.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.substitutions.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.flagsWritten.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.trustComputed.WritePrometheus(w); err != nil {
		return err
	}
	return m.sweepRuns.WritePrometheus(w)
}

// ---- lightweight metric primitives (Prometheus exposition) ----

type CounterVec struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl]++
	c.mu.Unlock()
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s counter\n", c.name); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, v := range c.values {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", c.name, k, v); err != nil {
			return err
		}
	}
	return nil
}

type Counter struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Inc() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.val++
	c.mu.Unlock()
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s counter\n", c.name); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := fmt.Fprintf(w, "%s %f\n", c.name, c.val)
	return err
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(escapeLabel(val))
		b.WriteString("\"")
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return v
}
