package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/rtavara/mercafresh-backend/pkg/config"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired = errors.New("stripe api key is required")
	errSecretRequired = errors.New("stripe webhook signing secret is required")
)

// Client holds the initialized Stripe API handle plus the environment
// metadata the checkout and webhook layers need.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
}

// NewClient validates the configured key against the declared environment
// and initializes Stripe exactly once for the process.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	if env != testEnv && env != liveEnv {
		return nil, fmt.Errorf("stripe environment must be %q or %q, got %q", testEnv, liveEnv, env)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !keyMatchesEnv(env, apiKey) {
		return nil, fmt.Errorf("stripe api key does not match environment %q", env)
	}

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:           api,
		environment:   env,
		signingSecret: signingSecret,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret used to verify
// Stripe-Signature headers.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func keyMatchesEnv(env, key string) bool {
	switch env {
	case liveEnv:
		return strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live")
	default:
		return strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test")
	}
}
