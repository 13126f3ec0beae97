package report

import (
	"fmt"
	"io"
	"strings"
)

// Banner is printed once at the start of a run
const Banner = "=== Log Analyzer for Suspicious Activity ==="

// NoDataMessage is printed when the input held no failed logins
const NoDataMessage = "No failed login attempts found."

// WriteTopAttackers prints the summary as a fixed-width two column table
func WriteTopAttackers(w io.Writer, r Report) {
	fmt.Fprintln(w, "\n=== Top Attackers ===")
	fmt.Fprintf(w, "%-15s | %-15s\n", "IP Address", "Failed Attempts")
	fmt.Fprintln(w, strings.Repeat("-", 33))
	for _, c := range r.Summary {
		fmt.Fprintf(w, "%-15s | %-15d\n", c.IP, c.Count)
	}
}

// WriteSuspicious prints the addresses above the threshold, or a notice when
// there are none
func WriteSuspicious(w io.Writer, r Report) {
	if len(r.Suspicious) == 0 {
		fmt.Fprintln(w, "\nNo IPs exceeded the threshold.")
		return
	}
	fmt.Fprintln(w, "\n⚠️ Suspicious IPs (above threshold):")
	for _, c := range r.Suspicious {
		fmt.Fprintf(w, "%s — %d failed attempts\n", c.IP, c.Count)
	}
}
