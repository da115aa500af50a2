package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

// SettingsUseCase caches the user settings and owns the AI credential lifecycle.
type SettingsUseCase struct {
	store  ports.SettingsStore
	creds  ports.CredentialStore
	holder ports.CredentialHolder

	mu       sync.RWMutex
	settings domain.Settings
	trigger  ports.PipelineTrigger
}

func NewSettingsUseCase(
	store ports.SettingsStore,
	creds ports.CredentialStore,
	holder ports.CredentialHolder,
) *SettingsUseCase {
	return &SettingsUseCase{
		store:    store,
		creds:    creds,
		holder:   holder,
		settings: domain.DefaultSettings(),
	}
}

// SetTrigger installs the pipeline wake signal fired when admission inputs change.
func (uc *SettingsUseCase) SetTrigger(trigger ports.PipelineTrigger) {
	uc.mu.Lock()
	uc.trigger = trigger
	uc.mu.Unlock()
}

// Load warms the settings cache and hands a stored credential to the AI client.
// A credential already configured from the environment is kept when nothing is stored.
func (uc *SettingsUseCase) Load(ctx context.Context) error {
	settings, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	apiKey, err := uc.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}

	uc.mu.Lock()
	uc.settings = settings
	uc.mu.Unlock()

	if strings.TrimSpace(apiKey) != "" {
		uc.holder.Configure(apiKey)
	}
	return nil
}

func (uc *SettingsUseCase) Get(context.Context) (domain.Settings, error) {
	return uc.Current(), nil
}

// Current returns the cached settings without touching storage.
func (uc *SettingsUseCase) Current() domain.Settings {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.settings
}

func (uc *SettingsUseCase) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	if err := uc.store.Save(ctx, settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	uc.mu.Lock()
	uc.settings = settings
	uc.mu.Unlock()

	uc.wake()
	return settings, nil
}

func (uc *SettingsUseCase) ConfigureCredential(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return domain.WrapError(domain.ErrInvalidInput, "configure credential", errors.New("api key is empty"))
	}
	if err := uc.creds.Save(ctx, apiKey); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	uc.holder.Configure(apiKey)
	uc.wake()
	return nil
}

func (uc *SettingsUseCase) ClearCredential(ctx context.Context) error {
	if err := uc.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	uc.holder.Configure("")
	return nil
}

func (uc *SettingsUseCase) CredentialConfigured(context.Context) bool {
	return uc.holder.HasCredential()
}

// AllowProcessing is the pipeline admission policy.
func (uc *SettingsUseCase) AllowProcessing() bool {
	return uc.Current().AutoProcess && uc.holder.HasCredential()
}

func (uc *SettingsUseCase) wake() {
	uc.mu.RLock()
	trigger := uc.trigger
	uc.mu.RUnlock()
	if trigger != nil {
		trigger.OnCollectionChanged()
	}
}
