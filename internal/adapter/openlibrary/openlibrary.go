package openlibrary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookhaven/library-app/pkg/breaker"
)

const ServiceType = "api_gateway"

type Config struct {
	GatewayURL string `yaml:"gatewayURL" envconfig:"OPEN_LIBRARY_GATEWAY_URL"`
}

type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var sortOptions = []SortOption{
	{Value: "new", Label: "Newest editions"},
	{Value: "editions", Label: "Edition count"},
	{Value: "relevance", Label: "Relevance"},
}

func validSort(sort string) bool {
	for _, o := range sortOptions {
		if o.Value == sort {
			return true
		}
	}
	return false
}

// Client proxies title searches to the external book-metadata gateway.
// Responses pass through untouched apart from the service_type tag; every
// failure mode collapses into a structured failure payload. The circuit
// breaker keeps a dead gateway from eating the 15s timeout on every request.
type Client struct {
	cfg    Config
	client *http.Client
	cb     breaker.Breaker
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cb:  breaker.New(10, 30*time.Second, 0.5, 3),
		log: log.Named("openlibrary"),
	}
}

// Available reports whether the gateway is configured at all. An
// unconfigured client is a normal degraded state, not an error.
func (c *Client) Available() bool {
	return c.cfg.GatewayURL != ""
}

func (c *Client) GatewayURL() string {
	return c.cfg.GatewayURL
}

func (c *Client) SortOptions() []SortOption {
	return sortOptions
}

// SearchByTitle hits the gateway and returns its JSON body as-is, tagged
// with the service type. Like the captcha verifier it never returns an
// error; the payload carries success=false instead.
func (c *Client) SearchByTitle(ctx context.Context, title, sort string) map[string]interface{} {
	if title == "" {
		return c.failure("book title is required")
	}
	if !validSort(sort) {
		sort = "new"
	}

	var result map[string]interface{}
	err := c.cb.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.GatewayURL, nil)
		if err != nil {
			return err
		}
		q := url.Values{}
		q.Set("title", title)
		q.Set("sort", sort)
		req.URL.RawQuery = q.Encode()

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			c.log.Error("gateway error", zap.Int("code", resp.StatusCode))
			result = c.failure("gateway error: " + resp.Status)
			return nil
		}
		var data map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			c.log.Error("gateway response parse failed", zap.Error(err))
			result = c.failure("malformed gateway response")
			return nil
		}
		data["service_type"] = ServiceType
		result = data
		return nil
	})
	if err != nil {
		c.log.Error("gateway unreachable", zap.Error(err))
		return c.failure("gateway unreachable")
	}
	return result
}

// HealthCheck probes the gateway's health endpoint with a short deadline.
func (c *Client) HealthCheck(ctx context.Context) bool {
	healthURL := strings.Replace(c.cfg.GatewayURL, "/open-library/search", "/health", 1)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) failure(msg string) map[string]interface{} {
	return map[string]interface{}{
		"success":      false,
		"error":        msg,
		"service_type": ServiceType,
	}
}
