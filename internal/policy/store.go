// Package policy loads the per-action verification policy file: which
// protocol variant to use, score thresholds, and key references.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/iganev/recaptcha-verify/internal/config"
)

const defaultMinScore = 0.5

// Providers selectable in the policy file.
const (
	ProviderV3         = "v3"
	ProviderEnterprise = "enterprise"
)

// Policy is the effective verification policy for one action, after global
// defaults and per-action overrides are merged.
type Policy struct {
	MinScore   float64
	SiteKey    string
	SecretKey  string // config key naming the siteverify secret or Enterprise API key
	ProjectID  string // Enterprise project, unused for v3
	Theme      string
	Appearance string
}

type rawPolicy struct {
	MinScore   *float64 `json:"min_score,omitempty"`
	SiteKey    string   `json:"site_key,omitempty"`
	SecretKey  string   `json:"secret_key,omitempty"`
	ProjectID  string   `json:"project_id,omitempty"`
	Theme      string   `json:"theme,omitempty"`
	Appearance string   `json:"appearance,omitempty"`
}

type rawPolicyFile struct {
	Provider string               `json:"provider"`
	Global   rawPolicy            `json:"global"`
	Actions  map[string]rawPolicy `json:"actions"`
}

// Store holds the parsed policy file.
type Store struct {
	mu       sync.RWMutex
	global   Policy
	actions  map[string]Policy
	provider string
}

var (
	current *Store
	path    string
	modTime time.Time
	loadMu  sync.Mutex
)

// Current returns the latest policy store, reloading from disk when the
// file changes. The file location comes from the RECAPTCHA_POLICY config key.
func Current() (*Store, error) {
	p, err := resolvePath()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("could not stat verification policy file: %w", err)
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if current != nil && p == path && info.ModTime().Equal(modTime) {
		return current, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("could not open verification policy file: %w", err)
	}

	store, err := Parse(data)
	if err != nil {
		return nil, err
	}

	current = store
	path = p
	modTime = info.ModTime()
	return current, nil
}

// Parse builds a Store from raw policy JSON.
func Parse(data []byte) (*Store, error) {
	var raw rawPolicyFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not parse verification policy: %w", err)
	}

	provider := strings.TrimSpace(raw.Provider)
	switch provider {
	case ProviderV3, ProviderEnterprise:
	case "":
		return nil, fmt.Errorf("verification policy requires a provider (%s|%s)", ProviderV3, ProviderEnterprise)
	default:
		return nil, fmt.Errorf("unknown verification provider %q (want %s|%s)", provider, ProviderV3, ProviderEnterprise)
	}
	if len(raw.Actions) == 0 {
		return nil, fmt.Errorf("verification policy requires at least one action")
	}

	base := Policy{
		MinScore:   defaultMinScore,
		SiteKey:    strings.TrimSpace(raw.Global.SiteKey),
		SecretKey:  strings.TrimSpace(raw.Global.SecretKey),
		ProjectID:  strings.TrimSpace(raw.Global.ProjectID),
		Theme:      strings.TrimSpace(raw.Global.Theme),
		Appearance: strings.TrimSpace(raw.Global.Appearance),
	}
	if raw.Global.MinScore != nil {
		base.MinScore = *raw.Global.MinScore
	}

	actions := make(map[string]Policy, len(raw.Actions))
	for name, override := range raw.Actions {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("verification policy action name cannot be empty")
		}
		p := base
		if override.MinScore != nil {
			p.MinScore = *override.MinScore
		}
		if s := strings.TrimSpace(override.SiteKey); s != "" {
			p.SiteKey = s
		}
		if s := strings.TrimSpace(override.SecretKey); s != "" {
			p.SecretKey = s
		}
		if s := strings.TrimSpace(override.ProjectID); s != "" {
			p.ProjectID = s
		}
		if s := strings.TrimSpace(override.Theme); s != "" {
			p.Theme = s
		}
		if s := strings.TrimSpace(override.Appearance); s != "" {
			p.Appearance = s
		}
		if p.SiteKey == "" {
			return nil, fmt.Errorf("verification policy requires a site_key in global or for action %q", name)
		}
		if p.SecretKey == "" {
			return nil, fmt.Errorf("verification policy requires a secret_key in global or for action %q", name)
		}
		if provider == ProviderEnterprise && p.ProjectID == "" {
			return nil, fmt.Errorf("enterprise policy requires a project_id in global or for action %q", name)
		}
		actions[name] = p
	}

	return &Store{
		global:   base,
		actions:  actions,
		provider: provider,
	}, nil
}

// PolicyFor returns the policy for an action. The second return is false
// when the action has no explicit entry and the global policy applies.
func (s *Store) PolicyFor(action string) (Policy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.actions[action]; ok {
		return p, true
	}
	return s.global, false
}

// Provider returns the configured protocol variant.
func (s *Store) Provider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

func resolvePath() (string, error) {
	val, err := config.Get("RECAPTCHA_POLICY")
	if err != nil || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("RECAPTCHA_POLICY must be set")
	}

	p := strings.TrimSpace(val)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("could not stat verification policy file (%s): %w", p, err)
	}
	return p, nil
}
