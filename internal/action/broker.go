package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"failtrack/internal/types"
)

// Recommendation is the firewall command an operator could run for an alert.
// failtrack never executes it.
type Recommendation struct {
	Target  string
	Command string
}

// Broker turns alerts into advisory actions and notifications
type Broker struct {
	Allowlist      []string
	DiscordWebhook string
	client         *http.Client
	logger         *zap.Logger
}

// NewBroker creates a new action broker
func NewBroker(allowlist []string, discordWebhook string, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		Allowlist:      allowlist,
		DiscordWebhook: discordWebhook,
		client:         &http.Client{Timeout: 5 * time.Second},
		logger:         logger,
	}
}

// Recommend returns a command for every ban_ip suggestion whose target is a
// valid IP and not allowlisted, in alert order
func (b *Broker) Recommend(alerts []types.Event) []Recommendation {
	var recs []Recommendation
	for _, evt := range alerts {
		act := evt.SuggestedAction
		if act == nil || act.Type != "ban_ip" {
			continue
		}
		if b.allowed(act.Target) {
			b.logger.Info("suggestion suppressed by allowlist", zap.String("ip", act.Target))
			continue
		}
		// Targets come from log text; only well-formed IPs reach a command line.
		if !isValidIP(act.Target) {
			b.logger.Warn("suggestion dropped, target is not a valid IP", zap.String("target", act.Target))
			continue
		}
		recs = append(recs, Recommendation{
			Target:  act.Target,
			Command: fmt.Sprintf("iptables -A INPUT -s %s -j DROP # Duration: %s", act.Target, act.Duration),
		})
	}
	return recs
}

// Notify posts one Discord message summarizing the alerts. It is a no-op
// without a webhook or alerts.
func (b *Broker) Notify(ctx context.Context, alerts []types.Event) error {
	if b.DiscordWebhook == "" || len(alerts) == 0 {
		return nil
	}

	type discordMsg struct {
		Content string `json:"content"`
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**[%s] failtrack: %d suspicious IPs**\n", time.Now().Format("15:04:05"), len(alerts))
	for _, evt := range alerts {
		target := ""
		if evt.SuggestedAction != nil {
			target = evt.SuggestedAction.Target
		}
		fmt.Fprintf(&sb, "- `%s` risk %s: %s\n", target, evt.Risk, evt.Explanation)
	}

	body, err := json.Marshal(discordMsg{Content: sb.String()})
	if err != nil {
		return fmt.Errorf("failed to encode discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.DiscordWebhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send discord alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord returned status: %s", resp.Status)
	}
	return nil
}

func (b *Broker) allowed(ip string) bool {
	for _, a := range b.Allowlist {
		if a == ip {
			return true
		}
	}
	return false
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
