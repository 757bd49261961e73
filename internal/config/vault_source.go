package config

import (
	"context"
	"fmt"
	"os"

	vault "github.com/hashicorp/vault/api"

	"github.com/iganev/recaptcha-verify/internal/log"
)

// VaultSource fetches values from a HashiCorp Vault KV v2 backend. An
// environment variable with the same key wins over Vault, which keeps local
// overrides possible without touching the secret store.
type VaultSource struct {
	client    *vault.Client
	mountPath string
}

func NewVaultSource() (*VaultSource, error) {
	addr := os.Getenv("VAULT_ADDR")
	token := os.Getenv("VAULT_TOKEN")
	mount := os.Getenv("VAULT_PATH")
	if mount == "" {
		mount = "secret"
	}
	if addr == "" || token == "" {
		return nil, fmt.Errorf("vault config requires VAULT_ADDR and VAULT_TOKEN")
	}

	client, err := vault.NewClient(&vault.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("vault client init error: %w", err)
	}
	client.SetToken(token)

	lg := log.WithComponent("config")
	lg.Debug().Str("mount", mount).Msg("vault source ready")
	return &VaultSource{
		client:    client,
		mountPath: mount,
	}, nil
}

func (v *VaultSource) Name() string {
	return "vault"
}

// Get reads the secret at "<VAULT_PATH>/data/{key}" and returns its "value"
// field, after checking the environment first.
func (v *VaultSource) Get(key string) (string, error) {
	if val := os.Getenv(key); val != "" {
		return val, nil
	}

	secret, err := v.client.KVv2(v.mountPath).Get(context.Background(), key)
	if err != nil {
		return "", fmt.Errorf("vault read error: %w", err)
	}
	if val, ok := secret.Data["value"].(string); ok && val != "" {
		return val, nil
	}
	return "", fmt.Errorf("no 'value' field found in vault secret: %s", key)
}
