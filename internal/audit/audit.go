package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"failtrack/internal/types"
)

// Logger appends alerts to a JSON-lines audit file
type Logger struct {
	mu       sync.Mutex
	filePath string
}

// NewLogger creates a new audit logger
func NewLogger(filePath string) *Logger {
	return &Logger{
		filePath: filePath,
	}
}

// LogEvents writes the alerts to the audit log, one JSON object per line
func (l *Logger) LogEvents(events []types.Event) error {
	if len(events) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, evt := range events {
		if err := encoder.Encode(evt); err != nil {
			return fmt.Errorf("failed to encode event %s: %w", evt.ID, err)
		}
	}

	return f.Close()
}
