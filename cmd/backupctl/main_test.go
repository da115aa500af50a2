package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "backup.json")
	sealedPath := filepath.Join(dir, "backup.enc")
	outPath := filepath.Join(dir, "restored.json")
	payload := `{"timestamp":"2024-07-01T00:00:00Z","cases":[],"hearings":[],"documents":[]}`
	if err := os.WriteFile(plainPath, []byte(payload), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"encrypt", plainPath, sealedPath}, strings.NewReader("s3cret\n"), &stderr, time.Second); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	sealed, err := os.ReadFile(sealedPath)
	if err != nil {
		t.Fatalf("read sealed: %v", err)
	}
	if bytes.Contains(sealed, []byte("timestamp")) {
		t.Fatalf("sealed output contains plaintext")
	}

	if err := run(context.Background(), []string{"decrypt", sealedPath, outPath}, strings.NewReader("s3cret\n"), &stderr, time.Second); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	restored, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if string(restored) != payload {
		t.Fatalf("unexpected restored payload %q", restored)
	}

	err = run(context.Background(), []string{"decrypt", sealedPath, outPath}, strings.NewReader("wrong\n"), &stderr, time.Second)
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication for a wrong passphrase, got %v", err)
	}
}

func TestEncryptRejectsNonSnapshotInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(in, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	err := run(context.Background(), []string{"encrypt", in, filepath.Join(dir, "out.enc")}, strings.NewReader("x\n"), &bytes.Buffer{}, time.Second)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunRequiresPassphraseAndArguments(t *testing.T) {
	if err := run(context.Background(), []string{"push"}, strings.NewReader(""), &bytes.Buffer{}, time.Second); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "backup.json")
	if err := os.WriteFile(in, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	err := run(context.Background(), []string{"encrypt", in, filepath.Join(dir, "out.enc")}, strings.NewReader("\n"), &bytes.Buffer{}, time.Second)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for an empty passphrase, got %v", err)
	}
}
