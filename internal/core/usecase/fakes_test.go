package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

type extractorFake struct {
	text  string
	err   error
	block bool

	mu       sync.Mutex
	calls    int
	maxPages int
	files    []domain.FileRef
}

func (f *extractorFake) Extract(ctx context.Context, file domain.FileRef, maxPages int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.maxPages = maxPages
	f.files = append(f.files, file)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type classifierFake struct {
	cls domain.Classification
	err error

	mu    sync.Mutex
	calls int
	req   domain.ClassifyRequest
}

func (f *classifierFake) Classify(_ context.Context, req domain.ClassifyRequest) (domain.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.req = req
	if f.err != nil {
		return domain.Classification{}, f.err
	}
	return f.cls, nil
}

type settingsFake struct {
	settings domain.Settings
}

func (f settingsFake) Current() domain.Settings { return f.settings }

type eventsFake struct {
	mu     sync.Mutex
	events []domain.DocumentEvent
	err    error
}

func (f *eventsFake) PublishDocumentStatus(_ context.Context, event domain.DocumentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *eventsFake) statuses() []domain.ProcessingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ProcessingStatus, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Status)
	}
	return out
}

type metricsFake struct {
	mu       sync.Mutex
	started  int
	finished []string
	waits    int
}

func (f *metricsFake) StartDocument() {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
}

func (f *metricsFake) FinishDocument(status string, _ time.Duration) {
	f.mu.Lock()
	f.finished = append(f.finished, status)
	f.mu.Unlock()
}

func (f *metricsFake) ObserveQueueWait(time.Duration) {
	f.mu.Lock()
	f.waits++
	f.mu.Unlock()
}

type storageFake struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{files: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.files[key] = raw
	f.mu.Unlock()
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type blobStoreFake struct {
	blobs  map[string][]byte
	putErr error
}

func (f *blobStoreFake) Put(_ context.Context, name string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.blobs == nil {
		f.blobs = make(map[string][]byte)
	}
	f.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (f *blobStoreFake) Get(_ context.Context, name string) ([]byte, bool, error) {
	data, ok := f.blobs[name]
	return data, ok, nil
}

// xorCipher stands in for the real AEAD; a wrong passphrase fails the trailing check.
type xorCipher struct{}

func (xorCipher) Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	out := xor(plaintext, passphrase)
	return append(out, []byte(passphrase)...), nil
}

func (xorCipher) Decrypt(blob []byte, passphrase string) ([]byte, error) {
	if !strings.HasSuffix(string(blob), passphrase) {
		return nil, domain.WrapError(domain.ErrAuthentication, "decrypt", errors.New("bad passphrase"))
	}
	return xor(blob[:len(blob)-len(passphrase)], passphrase), nil
}

func xor(data []byte, key string) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

type credentialHolderFake struct {
	mu  sync.Mutex
	key string
}

func (f *credentialHolderFake) Configure(apiKey string) {
	f.mu.Lock()
	f.key = strings.TrimSpace(apiKey)
	f.mu.Unlock()
}

func (f *credentialHolderFake) HasCredential() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key != ""
}

func longText() string {
	return strings.Repeat("IN THE HIGH COURT OF DELHI. Order dated 01.07.2024. ", 3)
}
