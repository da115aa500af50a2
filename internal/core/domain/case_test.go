package domain

import (
	"testing"
	"time"
)

func TestNormalizeCaseNumberCollapsesWhitespace(t *testing.T) {
	got := NormalizeCaseNumber("  WPPIL   161-2024 \t")
	if got != "WPPIL 161-2024" {
		t.Fatalf("unexpected normalized number %q", got)
	}
	if NormalizeCaseNumber("wppil 161-2024") == got {
		t.Fatalf("normalization must stay case-sensitive")
	}
}

func TestApplySyncKeepsLocalValuesForSilentFields(t *testing.T) {
	c := NewFiledCase("c1", "CS 1-2024", "High Court")
	c.NextHearingDate = "2024-05-01"
	c.CNRNumber = "DLHC010000012024"

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	c.ApplySync(PatchFromReport(CaseStatusReport{Found: true, Stage: "Arguments"}), now)

	if c.NextHearingDate != "2024-05-01" {
		t.Fatalf("expected local hearing date to survive, got %q", c.NextHearingDate)
	}
	if c.CNRNumber != "DLHC010000012024" {
		t.Fatalf("expected local cnr to survive, got %q", c.CNRNumber)
	}
	if c.CurrentStage != "Arguments" {
		t.Fatalf("expected stage overwrite, got %q", c.CurrentStage)
	}
	if c.ECourts == nil || c.ECourts.RawStatus != SyncedRawStatus {
		t.Fatalf("expected ecourts snapshot, got %+v", c.ECourts)
	}
	if c.LastSyncedAt == nil || !c.LastSyncedAt.Equal(now) {
		t.Fatalf("expected last synced at %v, got %v", now, c.LastSyncedAt)
	}
}

func TestNewFiledCaseDefaults(t *testing.T) {
	c := NewFiledCase("c1", " OS  12-2023 ", "District Court")
	if c.CaseNumber != "OS 12-2023" || c.Status != CasePending || c.CurrentStage != DefaultFilingStage {
		t.Fatalf("unexpected case %+v", c)
	}
	if c.CaseType != DefaultCaseType || c.PetitionerName != DefaultPetitioner || c.RespondentName != DefaultRespondent || c.IsUrgent {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestCaseValidateRejectsBadHearingDate(t *testing.T) {
	c := NewFiledCase("c1", "OS 12-2023", "District Court")
	c.NextHearingDate = "01/02/2024"
	if err := c.Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDetectFileKind(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want FileKind
	}{
		{"application/pdf", "x.bin", FileKindPDF},
		{"image/png", "scan", FileKindImage},
		{"text/plain; charset=utf-8", "", FileKindText},
		{"", "order.PDF", FileKindPDF},
		{"", "photo.jpeg", FileKindImage},
		{"application/msword", "a.doc", FileKindUnsupported},
	}
	for _, tc := range cases {
		if got := DetectFileKind(tc.mime, tc.name); got != tc.want {
			t.Fatalf("DetectFileKind(%q, %q) = %q, want %q", tc.mime, tc.name, got, tc.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
	s.BackupFrequency = "hourly"
	if err := s.Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if StrictnessCreative.Temperature() <= StrictnessStrict.Temperature() {
		t.Fatalf("creative strictness should sample hotter")
	}
}
