package parser

import (
	"testing"

	"failtrack/internal/types"
)

func TestFailedPasswordParser_Parse_Success(t *testing.T) {
	parser := NewFailedPasswordParser()

	line := "Oct 19 10:41:23 ubuntu sshd[1245]: Failed password for root from 192.168.1.15 port 45432 ssh2"
	evt := parser.Parse(line)

	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.Timestamp != "Oct 19 10:41:23" {
		t.Errorf("Expected timestamp 'Oct 19 10:41:23', got '%s'", evt.Timestamp)
	}
	if evt.IP != "192.168.1.15" {
		t.Errorf("Expected IP '192.168.1.15', got '%s'", evt.IP)
	}
	if evt.User != "root" {
		t.Errorf("Expected user 'root', got '%s'", evt.User)
	}
}

func TestFailedPasswordParser_Parse_KeepsTimestampSpacing(t *testing.T) {
	parser := NewFailedPasswordParser()

	evt := parser.Parse("Oct  9 07:03:11 host sshd[9]: Failed password for bob from 10.1.2.3 port 22 ssh2")
	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.Timestamp != "Oct  9 07:03:11" {
		t.Errorf("Expected verbatim timestamp 'Oct  9 07:03:11', got '%s'", evt.Timestamp)
	}
}

func TestFailedPasswordParser_Parse_InvalidUserTakesFirstToken(t *testing.T) {
	parser := NewFailedPasswordParser()

	evt := parser.Parse("Oct 19 10:41:23 host sshd[1]: Failed password for invalid user admin from 192.168.1.100 port 52944 ssh2")
	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.User != "invalid" {
		t.Errorf("Expected user 'invalid', got '%s'", evt.User)
	}
	if evt.IP != "192.168.1.100" {
		t.Errorf("Expected IP '192.168.1.100', got '%s'", evt.IP)
	}
}

func TestFailedPasswordParser_Parse_UnknownUser(t *testing.T) {
	parser := NewFailedPasswordParser()

	evt := parser.Parse("Oct 19 10:41:23 host sshd[1]: Failed password from 10.0.0.9 port 22 ssh2")
	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.User != types.UnknownUser {
		t.Errorf("Expected user '%s', got '%s'", types.UnknownUser, evt.User)
	}
}

func TestFailedPasswordParser_Parse_FirstAddressWins(t *testing.T) {
	parser := NewFailedPasswordParser()

	evt := parser.Parse("Oct 19 10:41:23 host sshd[1]: Failed password for root from 1.1.1.1 port 22 from 2.2.2.2")
	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.IP != "1.1.1.1" {
		t.Errorf("Expected first address '1.1.1.1', got '%s'", evt.IP)
	}
}

func TestFailedPasswordParser_Parse_AddressNotRangeChecked(t *testing.T) {
	parser := NewFailedPasswordParser()

	evt := parser.Parse("Oct 19 10:41:23 host sshd[1]: Failed password for root from 999.300.1.0 port 22 ssh2")
	if evt == nil {
		t.Fatal("Expected parsed event, got nil")
	}
	if evt.IP != "999.300.1.0" {
		t.Errorf("Expected IP '999.300.1.0', got '%s'", evt.IP)
	}
}

func TestFailedPasswordParser_Parse_Rejected(t *testing.T) {
	parser := NewFailedPasswordParser()

	tests := []struct {
		name string
		line string
	}{
		{"unrelated", "This is not an SSH log line"},
		{"accepted", "Oct 19 10:41:23 host sshd[1]: Accepted password for root from 10.0.0.5 port 22 ssh2"},
		{"no from clause", "Oct 19 10:41:23 host sshd[1]: Failed password for root"},
		{"no from clause no timestamp", "Failed password for root port 22"},
		{"no leading timestamp", "Failed password for invalid user from 203.0.113.5 port 22 ssh2"},
		{"timestamp not at start", "host Oct 19 10:41:23 sshd: Failed password for root from 10.0.0.1"},
		{"iso timestamp", "2024-10-19T10:41:23 host sshd: Failed password for root from 10.0.0.1"},
		{"lowercase marker", "Oct 19 10:41:23 host sshd[1]: failed password for root from 10.0.0.1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if evt := parser.Parse(tt.line); evt != nil {
				t.Errorf("Expected nil for %q, got %+v", tt.line, evt)
			}
		})
	}
}
