package homematic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrBackend covers every way a state change can fail: transport errors,
// timeouts and non-2xx responses alike.
var ErrBackend = errors.New("homematic backend error")

const stateChangePath = "/config/xmlapi/statechange.cgi"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the CCU XML-API at baseURL. A zero timeout
// leaves the http.Client default in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetState writes new_value to the datapoint iseID. It makes a single attempt.
func (c *Client) SetState(ctx context.Context, iseID string, on bool) error {
	query := url.Values{}
	query.Set("ise_id", iseID)
	query.Set("new_value", strconv.FormatBool(on))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+stateChangePath+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrBackend, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %w", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
