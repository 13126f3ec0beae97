package parser

import "failtrack/internal/types"

// Parser turns a raw log line into a failed-login event. A nil result means
// the line does not describe one.
type Parser interface {
	Parse(line string) *types.FailedLoginEvent
}
