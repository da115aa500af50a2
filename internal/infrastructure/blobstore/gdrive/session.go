package gdrive

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

var errNotConnected = errors.New("cloud storage is not connected")

// Session holds the short-lived access token granted by the Drive consent flow. It is an
// oauth2.TokenSource, so the Drive client picks up reconnects without being rebuilt.
type Session struct {
	mu    sync.RWMutex
	token *oauth2.Token
	now   func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

func (s *Session) Connect(accessToken string, expiresIn time.Duration) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return domain.WrapError(domain.ErrInvalidInput, "connect cloud session", errors.New("access token is required"))
	}
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	s.mu.Lock()
	s.token = &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      s.now().Add(expiresIn),
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid()
}

func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid() {
		return nil, errNotConnected
	}
	tok := *s.token
	return &tok, nil
}

func (s *Session) valid() bool {
	return s.token != nil && s.now().Before(s.token.Expiry)
}
