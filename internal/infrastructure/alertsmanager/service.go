package alertsmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/shopspring/decimal"
)

const (
	serviceName = "mintd"
	severity    = "info"

	maxRetries  = 5
	tonDecimals = 9
)

type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
}

type service struct {
	baseUrl     string
	explorerUrl string
	httpClient  *http.Client
}

func NewService(alertManagerURL, explorerURL string) ports.Alerts {
	return &service{
		baseUrl:     alertManagerURL,
		explorerUrl: strings.TrimRight(explorerURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *service) Publish(ctx context.Context, topic ports.Topic, message any) error {
	labels := map[string]string{
		"alertname": string(topic),
		"service":   serviceName,
		"severity":  severity,
	}

	desc := ""
	annotations := map[string]string{}
	switch topic {
	case ports.MintAccepted, ports.MintRejected:
		m, ok := message.(ports.MintAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		if topic == ports.MintAccepted {
			annotations["firing_title"] = "🎨 Mint Accepted"
		} else {
			annotations["firing_title"] = "⚠️ Mint Rejected"
			labels["severity"] = "warning"
		}
		desc = formatMintAlert(m)
		labels["request_id"] = m.RequestId
	case ports.TransferSubmitted:
		annotations["firing_title"] = "📤 Transfer Submitted"
		m, ok := message.(ports.TransferAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatTransferAlert(s.explorerUrl, m)
		labels["wallet"] = m.FromWallet
	default:
		annotations["firing_title"] = fmt.Sprintf("🔔 %s", topic)
		desc = formatGenericAlert(map[string]any{"event": message})
	}

	annotations["description"] = desc
	alert := Alert{
		Labels:      labels,
		Annotations: annotations,
		StartsAt:    time.Now(),
	}

	if err := s.sendAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to send alert to AlertManager: %w", err)
	}

	return nil
}

func (s *service) sendAlert(ctx context.Context, alerts Alert) error {
	payload, err := json.Marshal([]Alert{alerts})
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	baseDelay := 100 * time.Millisecond

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, "POST", s.baseUrl, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries-1 {
				// exponential: 100ms, 200ms, 400ms, 800ms
				delay := baseDelay * time.Duration(1<<uint(attempt))

				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return fmt.Errorf("failed to send alert after %d attempts: %w", maxRetries, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		// Retry on 5xx, not on 4xx
		if resp.StatusCode >= 500 && attempt < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<uint(attempt))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return fmt.Errorf(
			"failed to send alert to AlertManager with status %d after %d attempts",
			resp.StatusCode, attempt+1,
		)
	}

	return fmt.Errorf("failed to send alert after %d attempts", maxRetries)
}

func formatMintAlert(data ports.MintAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("*Request:* `%s`", data.RequestId))
	lines = append(lines, fmt.Sprintf("• Name: %s", data.Name))
	lines = append(lines, fmt.Sprintf("• Owner: %s", data.OwnerAddress))
	if len(data.MetadataUri) > 0 {
		lines = append(lines, fmt.Sprintf("• Metadata: %s", data.MetadataUri))
	}
	if data.StatusCode > 0 {
		lines = append(lines, fmt.Sprintf("• Marketplace status: %d", data.StatusCode))
	}
	return strings.Join(lines, "\n")
}

func formatTransferAlert(explorerUrl string, data ports.TransferAlert) string {
	lines := make([]string, 0)
	if len(explorerUrl) > 0 {
		lines = append(lines, fmt.Sprintf("%s/%s", explorerUrl, data.FromWallet))
	}
	lines = append(lines, fmt.Sprintf("\n*%s transfer*", data.Kind))
	lines = append(lines, fmt.Sprintf("• From: %s", data.FromWallet))
	lines = append(lines, fmt.Sprintf("• To: %s", data.Destination))
	lines = append(lines, fmt.Sprintf("• Seqno: %d", data.Seqno))
	if len(data.Amount) > 0 {
		lines = append(lines, fmt.Sprintf("• Amount: %s", data.Amount))
	}
	lines = append(lines, fmt.Sprintf("• Attached value: %s TON", FormatNano(data.Fee)))
	return strings.Join(lines, "\n")
}

func formatGenericAlert(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("• %s: %v", key, data[key]))
	}
	return strings.Join(lines, "\n")
}

// FormatNano renders a nano amount with 9 decimals, trailing zeros trimmed.
func FormatNano(nano uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(nano), -tonDecimals,
	).String()
}
