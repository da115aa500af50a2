package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const (
	settingsFile   = domain.SettingsKey + ".json"
	credentialFile = domain.CredentialKey
)

// SettingsStore keeps the settings record as JSON. Stored values overlay the defaults.
type SettingsStore struct {
	storage  ports.ObjectStorage
	defaults domain.Settings

	mu sync.Mutex
}

func NewSettingsStore(storage ports.ObjectStorage, defaults domain.Settings) *SettingsStore {
	return &SettingsStore{storage: storage, defaults: defaults}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.defaults
	raw, found, err := readAll(ctx, s.storage, settingsFile)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return s.defaults, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(ctx, settingsFile, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// CredentialStore keeps the generative model API key on local disk only.
type CredentialStore struct {
	storage ports.ObjectStorage
}

func NewCredentialStore(storage ports.ObjectStorage) *CredentialStore {
	return &CredentialStore{storage: storage}
}

// Load returns an empty string when no key has been stored.
func (c *CredentialStore) Load(ctx context.Context) (string, error) {
	raw, _, err := readAll(ctx, c.storage, credentialFile)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (c *CredentialStore) Save(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return domain.WrapError(domain.ErrInvalidInput, "save credential", errors.New("api key is empty"))
	}
	if err := c.storage.Save(ctx, credentialFile, strings.NewReader(apiKey)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (c *CredentialStore) Clear(ctx context.Context) error {
	if err := c.storage.Delete(ctx, credentialFile); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func readAll(ctx context.Context, storage ports.ObjectStorage, key string) ([]byte, bool, error) {
	rc, err := storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
