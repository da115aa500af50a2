package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// Store keeps one blob per name in the user's Drive, updating the existing file in place.
type Store struct {
	files   *drive.FilesService
	session *Session
}

func New(ctx context.Context, session *Session, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(session)}, opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	return &Store{files: srv.Files, session: session}, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if !s.session.Connected() {
		return domain.WrapError(domain.ErrCredential, "put backup blob", errNotConnected)
	}
	id, err := s.find(ctx, name)
	if err != nil {
		return s.wrapError("put backup blob", err)
	}

	if id != "" {
		_, err = s.files.Update(id, &drive.File{}).Media(bytes.NewReader(data)).Context(ctx).Do()
	} else {
		_, err = s.files.Create(&drive.File{Name: name, MimeType: "application/octet-stream"}).
			Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	}
	if err != nil {
		return s.wrapError("put backup blob", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	if !s.session.Connected() {
		return nil, false, domain.WrapError(domain.ErrCredential, "get backup blob", errNotConnected)
	}
	id, err := s.find(ctx, name)
	if err != nil {
		return nil, false, s.wrapError("get backup blob", err)
	}
	if id == "" {
		return nil, false, nil
	}

	resp, err := s.files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, false, s.wrapError("download backup blob", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, s.wrapError("read backup blob", err)
	}
	return data, true, nil
}

func (s *Store) find(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	list, err := s.files.List().Q(query).Spaces("drive").Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// wrapError ends the session when Drive rejects the token so the caller reconnects.
func (s *Store) wrapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.Is(err, errNotConnected) || (errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized) {
		s.session.Disconnect()
		return domain.WrapError(domain.ErrCredential, op, err)
	}
	return domain.WrapError(domain.ErrSync, op, err)
}

func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
