package secret

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"eduquest-service/internal/domain"
)

// Provider hands out the content API key. Implementations never cache the key
// beyond a single call.
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

// EnvProvider reads the key from an environment variable on the server.
type EnvProvider struct {
	Var string
}

func NewEnvProvider(name string) *EnvProvider {
	if name == "" {
		name = "API_KEY"
	}
	return &EnvProvider{Var: name}
}

func (p *EnvProvider) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(os.Getenv(p.Var))
	if key == "" {
		return "", fmt.Errorf("%s: %w", p.Var, domain.ErrKeyNotConfigured)
	}
	return key, nil
}

// RelayClient fetches the key from the /api/get-key relay.
type RelayClient struct {
	url        string
	httpClient *http.Client
}

func NewRelayClient(url string, httpClient *http.Client) *RelayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RelayClient{url: url, httpClient: httpClient}
}

type relayResponse struct {
	APIKey string `json:"apiKey"`
	Error  string `json:"error"`
}

func (c *RelayClient) APIKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("build relay request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call key relay: %w", err)
	}
	defer resp.Body.Close()

	var body relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode relay response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("key relay status %d: %s: %w", resp.StatusCode, body.Error, domain.ErrKeyNotConfigured)
	}
	if strings.TrimSpace(body.APIKey) == "" {
		return "", fmt.Errorf("key relay returned empty key: %w", domain.ErrKeyNotConfigured)
	}
	return body.APIKey, nil
}
