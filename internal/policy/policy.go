// Package policy holds the check configuration: the usage lookback window,
// oracle query bounds, and the escalation rule applied when no telemetry
// exists. Severities themselves are never configurable; policy only affects
// how a result is mapped to a verdict at the presentation layer.
package policy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultWindowDays  = 30
	DefaultTimeout     = 3 * time.Second
	DefaultConcurrency = 8
)

// Duration unmarshals from YAML strings like "500ms" or plain nanosecond
// integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Policy is the configuration for one check run.
type Policy struct {
	// WindowDays is the usage lookback window.
	WindowDays int `yaml:"window_days"`

	// QueryTimeout bounds each oracle query; expiry means NoData.
	QueryTimeout Duration `yaml:"query_timeout"`

	// QueryConcurrency bounds in-flight oracle queries.
	QueryConcurrency int `yaml:"query_concurrency"`

	// FailOnWarningsWithoutData escalates warnings to a failing verdict
	// when the oracle had no telemetry for the whole comparison. Warnings
	// cannot be confirmed harmless without data, so this defaults to on.
	FailOnWarningsWithoutData *bool `yaml:"fail_on_warnings_without_data"`
}

// Default returns the built-in policy.
func Default() Policy {
	escalate := true
	return Policy{
		WindowDays:                DefaultWindowDays,
		QueryTimeout:              Duration(DefaultTimeout),
		QueryConcurrency:          DefaultConcurrency,
		FailOnWarningsWithoutData: &escalate,
	}
}

// Load reads a YAML policy file, filling unset fields from Default.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	p := Policy{}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	p.applyDefaults()
	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Window returns the lookback window as a duration.
func (p Policy) Window() time.Duration {
	return time.Duration(p.WindowDays) * 24 * time.Hour
}

// Timeout returns the per-query deadline as a time.Duration.
func (p Policy) Timeout() time.Duration {
	return time.Duration(p.QueryTimeout)
}

// EscalateWarnings reports whether warnings fail the check when no usage
// data exists.
func (p Policy) EscalateWarnings() bool {
	return p.FailOnWarningsWithoutData == nil || *p.FailOnWarningsWithoutData
}

func (p *Policy) applyDefaults() {
	if p.WindowDays == 0 {
		p.WindowDays = DefaultWindowDays
	}
	if p.QueryTimeout == 0 {
		p.QueryTimeout = Duration(DefaultTimeout)
	}
	if p.QueryConcurrency == 0 {
		p.QueryConcurrency = DefaultConcurrency
	}
}

func (p Policy) validate() error {
	if p.WindowDays < 0 {
		return fmt.Errorf("invalid policy: window_days must be positive, got %d", p.WindowDays)
	}
	if p.QueryTimeout < 0 {
		return fmt.Errorf("invalid policy: query_timeout must be positive, got %s", p.Timeout())
	}
	if p.QueryConcurrency < 0 {
		return fmt.Errorf("invalid policy: query_concurrency must be positive, got %d", p.QueryConcurrency)
	}
	return nil
}
