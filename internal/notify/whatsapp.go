package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Gateway sends WhatsApp messages through the Notif.my.id send-message API.
// Callers treat delivery as best-effort: an error means "not notified",
// never a failed submission.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGateway constructs a gateway targeting the provided base URL.
func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers a text message to the target phone number.
func (g *Gateway) Send(ctx context.Context, target, message string) error {
	if g.apiKey == "" {
		return errors.New("notification api key not configured")
	}

	params := url.Values{}
	params.Set("apikey", g.apiKey)
	params.Set("receiver", target)
	params.Set("mtype", "text")
	params.Set("text", message)
	params.Set("duration", "3000")

	endpoint := fmt.Sprintf("%s/api/send-message?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send whatsapp message")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("whatsapp gateway returned %s", resp.Status)
	}

	var result struct {
		Status bool   `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.WithStack(err)
	}
	if !result.Status {
		return errors.Errorf("whatsapp gateway rejected message: %s", result.Reason)
	}
	return nil
}

// FormatPhone normalizes an Indonesian phone number to international form:
// non-digits are stripped and a leading 0 becomes 62.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if strings.HasPrefix(clean, "0") {
		clean = "62" + clean[1:]
	}
	return clean
}
