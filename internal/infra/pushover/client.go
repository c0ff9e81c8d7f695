package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homematic-voice/internal/domain"
)

const defaultBaseURL = "https://api.pushover.net/1"

// Pushover message priorities.
const (
	PriorityNormal = 0
	PriorityHigh   = 1
)

type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, defaultBaseURL)
}

func NewClientWithURL(token, userKey, baseURL string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify pushes the outcome's message. Failed state changes go out with high
// priority so they break through quiet hours; outcomes without a message are
// not pushed.
func (c *Client) Notify(ctx context.Context, outcome domain.Outcome) error {
	if c.token == "" || c.userKey == "" || outcome.Message == "" {
		return nil
	}

	title, priority := messageStyle(outcome.Kind)

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", outcome.Message)
	data.Set("title", title)
	data.Set("priority", strconv.Itoa(priority))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/messages.json",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s notification: %w", outcome.Kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}

	return nil
}

func messageStyle(kind domain.OutcomeKind) (string, int) {
	switch kind {
	case domain.OutcomeBackendFailure:
		return "Homematic: Schalten fehlgeschlagen", PriorityHigh
	case domain.OutcomeSuccess:
		return "Homematic: geschaltet", PriorityNormal
	default:
		return "Homematic", PriorityNormal
	}
}
