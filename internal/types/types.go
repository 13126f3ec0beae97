package types

import "time"

// UnknownUser is recorded when a failed-login line names no user
const UnknownUser = "unknown"

// FailedLoginEvent is one authentication failure extracted from a log line
type FailedLoginEvent struct {
	Timestamp string `json:"timestamp"` // verbatim "<Mon> <day> <HH:MM:SS>", no year
	IP        string `json:"ip"`
	User      string `json:"user"`
	Line      int    `json:"line,omitempty"` // 1-based position in the source
}

// EventStore holds extracted events in file-line order. Read-only once built.
type EventStore []FailedLoginEvent

// AddressCount is the number of failed logins seen from one source address
type AddressCount struct {
	IP    string   `json:"ip"`
	Count int      `json:"count"`
	Users []string `json:"users,omitempty"` // distinct, encounter order
}

// TimeBucketCount is the number of failed logins within one HH:MM minute
type TimeBucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// RiskLevel defines the severity of an event
type RiskLevel string

const (
	RiskInfo     RiskLevel = "info"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Event represents an alert raised for a suspicious source address
type Event struct {
	ID              string           `json:"id"`
	RunID           string           `json:"run_id,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
	Source          string           `json:"source"`
	Risk            RiskLevel        `json:"risk"`
	Confidence      float64          `json:"confidence"`
	Summary         string           `json:"summary"`
	Explanation     string           `json:"explanation"`
	Evidence        []Evidence       `json:"evidence"`
	SuggestedAction *SuggestedAction `json:"suggested_action,omitempty"`
	Mode            string           `json:"mode"` // always "advisory"
}

// Evidence holds key-value pairs supporting the detection
type Evidence struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// SuggestedAction defines what the operator should do
type SuggestedAction struct {
	Type     string `json:"type"`   // e.g. "ban_ip"
	Target   string `json:"target"` // e.g. "45.x.x.x"
	Duration string `json:"duration"`
}

// Config represents the application configuration
type Config struct {
	Input struct {
		AuthLogPath string `yaml:"auth_log_path"`
	} `yaml:"input"`

	Detection struct {
		// Kept as a string so non-numeric values fall back to the default
		// instead of failing the decode.
		Threshold      string `yaml:"threshold"`
		EnableLocalLLM bool   `yaml:"enable_local_llm"`
		LocalLLMUrl    string `yaml:"local_llm_url"`   // e.g. http://localhost:11434/api/generate
		LocalLLMModel  string `yaml:"local_llm_model"` // e.g. tinyllama
	} `yaml:"detection"`

	Output struct {
		Dir             string `yaml:"dir"`
		Charts          *bool  `yaml:"charts"`
		AuditLogPath    string `yaml:"audit_log_path"`
		StateDBPath     string `yaml:"state_db_path"`
		MetricsTextfile string `yaml:"metrics_textfile"`
	} `yaml:"output"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console, json
	} `yaml:"logging"`

	Action struct {
		Allowlist []string `yaml:"allowlist"` // IPs never suggested for a ban
	} `yaml:"action"`

	Notification struct {
		DiscordWebhook string `yaml:"discord_webhook"`
	} `yaml:"notification"`

	Dashboard struct {
		Addr string `yaml:"addr"`
	} `yaml:"dashboard"`
}

// ChartsEnabled reports whether chart artifacts should be produced
func (c *Config) ChartsEnabled() bool {
	return c.Output.Charts == nil || *c.Output.Charts
}
