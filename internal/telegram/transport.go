package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Transport sends one Bot API command and returns the raw response body.
// An error or an empty body both mean the round trip produced nothing usable.
type Transport interface {
	Send(ctx context.Context, method, query string) (string, error)
}

// HTTPTransport issues GET requests to /bot<token>/<method><query>.
type HTTPTransport struct {
	apiURL string
	token  string
	client *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport. An empty apiURL selects DefaultAPIURL.
func NewHTTPTransport(apiURL, token string, timeout time.Duration) *HTTPTransport {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPTransport{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Send returns the body whatever the HTTP status: the Bot API reports
// failures inside the JSON envelope, which the caller inspects.
func (t *HTTPTransport) Send(ctx context.Context, method, query string) (string, error) {
	u := fmt.Sprintf("%s/bot%s/%s%s", t.apiURL, t.token, method, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", method, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Debugf("telegram %s returned status %d", method, resp.StatusCode)
	}
	return string(body), nil
}
