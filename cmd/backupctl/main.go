// Command backupctl seals and opens registry backups outside the API server.
//
//	backupctl encrypt <in.json> <out.enc>
//	backupctl decrypt <in.enc> <out.json>
//	backupctl push <in.json>
//	backupctl pull <out.json>
//
// push and pull use the backup provider from the environment. The passphrase is read from
// stdin on every run.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kirillkom/legal-dossier/internal/bootstrap"
	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/encryption"
	"github.com/kirillkom/legal-dossier/internal/observability/logging"
)

const usage = `usage:
  backupctl encrypt <in.json> <out.enc>
  backupctl decrypt <in.enc> <out.json>
  backupctl push <in.json>
  backupctl pull <out.json>`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	timeout := flag.Duration("timeout", 2*time.Minute, "deadline for push and pull")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Args(), os.Stdin, os.Stderr, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "backupctl:", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, args []string, stdin io.Reader, stderr io.Writer, timeout time.Duration) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	cipher := encryption.New()
	prompt := bufio.NewReader(stdin)

	switch {
	case cmd == "encrypt" && len(rest) == 2:
		plain, err := readSnapshot(rest[0])
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(prompt, stderr)
		if err != nil {
			return err
		}
		sealed, err := cipher.Encrypt(plain, passphrase)
		if err != nil {
			return err
		}
		return os.WriteFile(rest[1], sealed, 0o600)

	case cmd == "decrypt" && len(rest) == 2:
		sealed, err := os.ReadFile(rest[0])
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(prompt, stderr)
		if err != nil {
			return err
		}
		plain, err := cipher.Decrypt(sealed, passphrase)
		if err != nil {
			return err
		}
		return os.WriteFile(rest[1], plain, 0o600)

	case cmd == "push" && len(rest) == 1:
		plain, err := readSnapshot(rest[0])
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(prompt, stderr)
		if err != nil {
			return err
		}
		sealed, err := cipher.Encrypt(plain, passphrase)
		if err != nil {
			return err
		}
		return withStore(ctx, timeout, func(ctx context.Context, target *bootstrap.BlobTarget, name string) error {
			if err := target.Store.Put(ctx, name, sealed); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "pushed %s (%d bytes)\n", name, len(sealed))
			return nil
		})

	case cmd == "pull" && len(rest) == 1:
		passphrase, err := readPassphrase(prompt, stderr)
		if err != nil {
			return err
		}
		return withStore(ctx, timeout, func(ctx context.Context, target *bootstrap.BlobTarget, name string) error {
			sealed, found, err := target.Store.Get(ctx, name)
			if err != nil {
				return err
			}
			if !found {
				return domain.WrapError(domain.ErrBackupNotFound, "pull backup", fmt.Errorf("%s does not exist", name))
			}
			plain, err := cipher.Decrypt(sealed, passphrase)
			if err != nil {
				return err
			}
			return os.WriteFile(rest[0], plain, 0o600)
		})
	}
	return errUsage
}

// readSnapshot loads a plaintext backup and checks that it decodes as a registry snapshot.
func readSnapshot(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read snapshot", err)
	}
	return raw, nil
}

func readPassphrase(r *bufio.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "passphrase: ")
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	passphrase := strings.TrimRight(line, "\r\n")
	if passphrase == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "read passphrase", errors.New("passphrase is required"))
	}
	return passphrase, nil
}

func withStore(ctx context.Context, timeout time.Duration, fn func(context.Context, *bootstrap.BlobTarget, string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stderr, "backupctl", cfg.LogLevel, "text"))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target, err := bootstrap.OpenBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer target.Close()

	if target.Session != nil {
		token := strings.TrimSpace(os.Getenv("GDRIVE_ACCESS_TOKEN"))
		if err := target.Session.Connect(token, time.Hour); err != nil {
			return err
		}
	}
	return fn(ctx, target, cfg.BackupFilename)
}
