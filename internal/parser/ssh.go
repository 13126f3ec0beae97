package parser

import (
	"regexp"
	"strings"

	"failtrack/internal/types"
)

// FailedMarker is the substring every failed password line carries
const FailedMarker = "Failed password"

// FailedPasswordParser extracts failed password attempts from sshd logs
type FailedPasswordParser struct {
	// Pre-compiled regexes
	reTimestamp *regexp.Regexp
	reFrom      *regexp.Regexp
	reUser      *regexp.Regexp
}

// NewFailedPasswordParser creates a new sshd failed-password parser
func NewFailedPasswordParser() *FailedPasswordParser {
	return &FailedPasswordParser{
		// Oct 19 10:41:23 ubuntu sshd[1245]: ...
		reTimestamp: regexp.MustCompile(`^\S+\s+\d+\s+\d+:\d+:\d+`),
		// ... from 192.168.1.15 port 45432 ssh2
		reFrom: regexp.MustCompile(`from (\d+\.\d+\.\d+\.\d+)`),
		// ... for root from ...
		reUser: regexp.MustCompile(`for (\w+)`),
	}
}

// Parse implements the Parser interface.
//
// Lines with the failure marker but no leading syslog timestamp are dropped,
// even when they carry an address.
func (p *FailedPasswordParser) Parse(line string) *types.FailedLoginEvent {
	if !strings.Contains(line, FailedMarker) {
		return nil
	}

	ts := p.reTimestamp.FindString(line)
	if ts == "" {
		return nil
	}

	from := p.reFrom.FindStringSubmatch(line)
	if len(from) < 2 {
		return nil
	}

	user := types.UnknownUser
	// "for invalid user admin" yields "invalid": first token only.
	if m := p.reUser.FindStringSubmatch(line); len(m) > 1 {
		user = m[1]
	}

	return &types.FailedLoginEvent{
		Timestamp: ts,
		IP:        from[1],
		User:      user,
	}
}
