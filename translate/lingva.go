package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	// DefaultInstance is a known working Lingva Translate instance.
	DefaultInstance = "https://translate.plausibility.cloud"
)

// Lingva is a Facility backed by the Lingva Translate API.
type Lingva struct {
	instance   string
	httpClient *http.Client
}

// NewLingva creates a Lingva-backed translation facility. An empty instance
// uses DefaultInstance.
func NewLingva(instance string) *Lingva {
	if instance == "" {
		instance = DefaultInstance
	}
	return &Lingva{
		instance:   instance,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type lingvaResponse struct {
	Translation string `json:"translation"`
}

// CanTranslate probes the instance with a one-word request for the pair.
func (l *Lingva) CanTranslate(ctx context.Context, source, target string) (bool, error) {
	_, err := l.request(ctx, source, target, "hello")
	if err != nil {
		return false, nil // unreachable or unservable pair, not an error state
	}
	return true, nil
}

// NewTranslator returns a handle bound to one language pair.
func (l *Lingva) NewTranslator(ctx context.Context, source, target string) (Translator, error) {
	return &lingvaTranslator{client: l, source: source, target: target}, nil
}

type lingvaTranslator struct {
	client *Lingva
	source string
	target string
	closed bool
}

func (t *lingvaTranslator) Translate(ctx context.Context, text string) (string, error) {
	if t.closed {
		return "", fmt.Errorf("translator handle is closed")
	}
	return t.client.request(ctx, t.source, t.target, text)
}

func (t *lingvaTranslator) Close() error {
	t.closed = true
	return nil
}

func (l *Lingva) request(ctx context.Context, source, target, text string) (string, error) {
	if source == "" {
		source = "auto"
	}
	reqURL := fmt.Sprintf("%s/api/v1/%s/%s/%s", l.instance, source, target, url.PathEscape(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translating: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d", l.instance, resp.StatusCode)
	}

	var result lingvaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return result.Translation, nil
}
