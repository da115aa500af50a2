package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const DefaultBackupName = "legal_dossier_backup.enc"

// BackupUseCase moves the encrypted registry snapshot between memory and the blob store.
// Local state is only replaced after a blob decrypts and decodes cleanly.
type BackupUseCase struct {
	registry ports.SnapshotRepository
	cipher   ports.SnapshotCipher
	blobs    ports.BlobStore
	name     string
	logger   *slog.Logger
	now      func() time.Time
}

func NewBackupUseCase(
	registry ports.SnapshotRepository,
	cipher ports.SnapshotCipher,
	blobs ports.BlobStore,
	name string,
	logger *slog.Logger,
) *BackupUseCase {
	if strings.TrimSpace(name) == "" {
		name = DefaultBackupName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupUseCase{
		registry: registry,
		cipher:   cipher,
		blobs:    blobs,
		name:     name,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *BackupUseCase) Push(ctx context.Context, passphrase string) (*domain.BackupReceipt, error) {
	if passphrase == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "push backup", errors.New("passphrase is required"))
	}
	snap := uc.registry.Snapshot(uc.now())
	plaintext, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	blob, err := uc.cipher.Encrypt(plaintext, passphrase)
	if err != nil {
		return nil, err
	}
	if err := uc.blobs.Put(ctx, uc.name, blob); err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}

	receipt := uc.receipt(snap, len(blob))
	uc.logger.Info("backup.pushed", "name", uc.name, "bytes", receipt.Bytes, "cases", receipt.Cases, "documents", receipt.Documents)
	return receipt, nil
}

func (uc *BackupUseCase) Pull(ctx context.Context, passphrase string) (*domain.BackupReceipt, error) {
	if passphrase == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "pull backup", errors.New("passphrase is required"))
	}
	blob, found, err := uc.blobs.Get(ctx, uc.name)
	if err != nil {
		return nil, fmt.Errorf("download backup: %w", err)
	}
	if !found {
		return nil, domain.WrapError(domain.ErrBackupNotFound, "pull backup", errors.New(uc.name))
	}
	plaintext, err := uc.cipher.Decrypt(blob, passphrase)
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode snapshot", err)
	}
	if err := uc.registry.Restore(snap); err != nil {
		return nil, err
	}

	receipt := uc.receipt(snap, len(blob))
	uc.logger.Info("backup.restored", "name", uc.name, "snapshot_at", snap.Timestamp, "cases", receipt.Cases, "documents", receipt.Documents)
	return receipt, nil
}

func (uc *BackupUseCase) receipt(snap domain.Snapshot, size int) *domain.BackupReceipt {
	return &domain.BackupReceipt{
		Name:      uc.name,
		Bytes:     size,
		Timestamp: snap.Timestamp,
		Cases:     len(snap.Cases),
		Hearings:  len(snap.Hearings),
		Documents: len(snap.Documents),
	}
}
