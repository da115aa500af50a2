package bootstrap

import (
	"context"
	"testing"

	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

func TestOpenBlobStoreLocalRoundTrip(t *testing.T) {
	target, err := OpenBlobStore(context.Background(), config.Config{BackupProvider: "localfs", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenBlobStore() error = %v", err)
	}
	defer target.Close()
	if target.Session != nil {
		t.Fatalf("local provider must not expose a cloud session")
	}

	if _, found, err := target.Store.Get(context.Background(), "backup.enc"); err != nil || found {
		t.Fatalf("expected missing blob, got found=%v err=%v", found, err)
	}
	if err := target.Store.Put(context.Background(), "backup.enc", []byte("sealed")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data, found, err := target.Store.Get(context.Background(), "backup.enc")
	if err != nil || !found || string(data) != "sealed" {
		t.Fatalf("unexpected blob %q found=%v err=%v", data, found, err)
	}
}

func TestOpenBlobStoreRejectsUnknownProvider(t *testing.T) {
	if _, err := OpenBlobStore(context.Background(), config.Config{BackupProvider: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

type holderFake struct {
	key     string
	present bool
}

func (h *holderFake) Configure(apiKey string) {
	h.key = apiKey
}

func (h *holderFake) HasCredential() bool {
	return h.present
}

func TestCredentialFanoutFollowsPrimary(t *testing.T) {
	primary := &holderFake{present: true}
	lookup := &holderFake{}
	fanout := credentialFanout{primary: primary, rest: []ports.CredentialHolder{lookup}}

	fanout.Configure("key")
	if primary.key != "key" || lookup.key != "key" {
		t.Fatalf("key not fanned out: %q %q", primary.key, lookup.key)
	}
	if !fanout.HasCredential() {
		t.Fatalf("admission must follow the primary holder")
	}
}
