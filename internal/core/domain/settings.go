package domain

import (
	"fmt"
	"strings"
)

type AIStrictness string

const (
	StrictnessStrict   AIStrictness = "strict"
	StrictnessCreative AIStrictness = "creative"
)

// Temperature maps the configured strictness onto a sampling temperature.
func (s AIStrictness) Temperature() float32 {
	if s == StrictnessCreative {
		return 0.7
	}
	return 0
}

const (
	SettingsKey         = "autodoc_settings"
	CredentialKey       = "gemini_api_key"
	DefaultNamingFormat = "{YEAR}-{CASE_NO}-{DOC_TYPE}"
	DefaultCourt        = "Supreme Court of India"
)

type Settings struct {
	Theme                string       `json:"theme" yaml:"theme"`
	Density              string       `json:"density" yaml:"density"`
	FontSize             string       `json:"font_size" yaml:"font_size"`
	AIStrictness         AIStrictness `json:"ai_strictness" yaml:"ai_strictness"`
	NamingTemplate       string       `json:"naming_template" yaml:"naming_template"`
	AutoProcess          bool         `json:"auto_process" yaml:"auto_process"`
	DefaultCourt         string       `json:"default_court" yaml:"default_court"`
	BackupFrequency      string       `json:"backup_frequency" yaml:"backup_frequency"`
	SoundEnabled         bool         `json:"sound_enabled" yaml:"sound_enabled"`
	NotificationsEnabled bool         `json:"notifications_enabled" yaml:"notifications_enabled"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:                "system",
		Density:              "comfortable",
		FontSize:             "medium",
		AIStrictness:         StrictnessStrict,
		NamingTemplate:       DefaultNamingFormat,
		AutoProcess:          true,
		DefaultCourt:         DefaultCourt,
		BackupFrequency:      "daily",
		SoundEnabled:         true,
		NotificationsEnabled: true,
	}
}

func (s Settings) Validate() error {
	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"theme", s.Theme, []string{"light", "dark", "system"}},
		{"density", s.Density, []string{"comfortable", "compact"}},
		{"font_size", s.FontSize, []string{"small", "medium", "large"}},
		{"ai_strictness", string(s.AIStrictness), []string{string(StrictnessStrict), string(StrictnessCreative)}},
		{"backup_frequency", s.BackupFrequency, []string{"daily", "weekly", "manual"}},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return WrapError(ErrInvalidInput, "validate settings", errUnknown(c.field, c.value))
		}
	}
	if strings.TrimSpace(s.NamingTemplate) == "" {
		return WrapError(ErrInvalidInput, "validate settings", errEmpty("naming_template"))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func errEmpty(field string) error {
	return fmt.Errorf("%s is required", field)
}

func errUnknown(field, value string) error {
	return fmt.Errorf("unsupported %s %q", field, value)
}
