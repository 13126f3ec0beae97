package detect

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"failtrack/internal/types"
)

// DefaultThreshold applies when no usable threshold is supplied
const DefaultThreshold = 5

// ParseThreshold reads a non-negative integer threshold. Anything else,
// including the empty string, signs and overflowing values, yields
// DefaultThreshold.
func ParseThreshold(s string) int {
	if s == "" {
		return DefaultThreshold
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return DefaultThreshold
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultThreshold
	}
	return n
}

// Classify returns the addresses whose count strictly exceeds threshold,
// preserving the order of counts.
func Classify(counts []types.AddressCount, threshold int) []types.AddressCount {
	var suspicious []types.AddressCount
	for _, c := range counts {
		if c.Count > threshold {
			suspicious = append(suspicious, c)
		}
	}
	return suspicious
}

// Engine turns suspicious addresses into advisory alerts
type Engine struct {
	threshold int
	source    string
	now       func() time.Time
}

// NewEngine creates a new detection engine
func NewEngine(threshold int, source string) *Engine {
	if source == "" {
		source = "ssh_auth"
	}
	return &Engine{
		threshold: threshold,
		source:    source,
		now:       time.Now,
	}
}

// Threshold returns the configured failure threshold
func (e *Engine) Threshold() int {
	return e.threshold
}

// Suspicious classifies counts against the engine's threshold
func (e *Engine) Suspicious(counts []types.AddressCount) []types.AddressCount {
	return Classify(counts, e.threshold)
}

// Alerts builds one event per suspicious address, in the order given
func (e *Engine) Alerts(runID string, suspicious []types.AddressCount) []types.Event {
	alerts := make([]types.Event, 0, len(suspicious))
	for _, s := range suspicious {
		alerts = append(alerts, e.alertFor(runID, s))
	}
	return alerts
}

func (e *Engine) alertFor(runID string, c types.AddressCount) types.Event {
	risk := types.RiskMedium
	confidence := 0.7
	// Twice over the limit reads as automated guessing rather than typos.
	if c.Count > 2*e.threshold {
		risk = types.RiskHigh
		confidence = 0.9
	}

	return types.Event{
		ID:          uuid.NewString(),
		RunID:       runID,
		Timestamp:   e.now(),
		Source:      e.source,
		Risk:        risk,
		Confidence:  confidence,
		Summary:     "SSH Brute Force Detected",
		Explanation: fmt.Sprintf("IP %s failed %d SSH logins using %d distinct usernames (threshold %d).", c.IP, c.Count, len(c.Users), e.threshold),
		Evidence: []types.Evidence{
			{Type: "ssh_fail_count", Value: c.Count},
			{Type: "distinct_users", Value: len(c.Users)},
			{Type: "threshold", Value: e.threshold},
		},
		SuggestedAction: &types.SuggestedAction{
			Type:     "ban_ip",
			Target:   c.IP,
			Duration: "1h",
		},
		Mode: "advisory",
	}
}
