// Package vault resolves the small set of named secrets the mining HTTP
// service needs at startup (database DSN, Redis password, JWT signing
// secret) from HashiCorp Vault's KV engine, falling back to the values
// already present in configuration when Vault is disabled.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"

	"candleminer/config"
)

// Client wraps the HashiCorp Vault client with a small read-through cache
// of resolved secret values.
type Client struct {
	client  *api.Client
	config  config.VaultConfig
	mu      sync.RWMutex
	cache   map[string]string
	enabled bool
}

// NewClient creates a new Vault client. When cfg.Enabled is false, Resolve
// always falls through to its fallback argument.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg, cache: make(map[string]string)}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{client: client, config: cfg, cache: make(map[string]string), enabled: true}, nil
}

// Resolve returns field <key> of the Vault KV secret at
// <mount>/data/<secret-path>, caching it for subsequent calls. When
// Vault is disabled, or the key is absent, it returns fallback.
func (c *Client) Resolve(ctx context.Context, key, fallback string) (string, error) {
	if !c.enabled {
		return fallback, nil
	}

	c.mu.RLock()
	if v, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return fallback, nil
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return fallback, nil
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return fallback, nil
	}

	c.mu.Lock()
	c.cache[key] = value
	c.mu.Unlock()

	return value, nil
}

// ResolveDatabaseDSN resolves the "database_dsn" secret.
func (c *Client) ResolveDatabaseDSN(ctx context.Context, fallback string) (string, error) {
	return c.Resolve(ctx, "database_dsn", fallback)
}

// ResolveRedisPassword resolves the "redis_password" secret.
func (c *Client) ResolveRedisPassword(ctx context.Context, fallback string) (string, error) {
	return c.Resolve(ctx, "redis_password", fallback)
}

// ResolveJWTSecret resolves the "jwt_secret" secret.
func (c *Client) ResolveJWTSecret(ctx context.Context, fallback string) (string, error) {
	return c.Resolve(ctx, "jwt_secret", fallback)
}

// IsEnabled returns whether Vault is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Health checks the Vault connection.
func (c *Client) Health(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	health, err := c.client.Sys().Health()
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

// ClearCache clears the in-memory secret cache.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]string)
	c.mu.Unlock()
}
