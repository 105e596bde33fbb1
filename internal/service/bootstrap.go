package service

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// CredentialStore holds the session credential.
type CredentialStore interface {
	Token() string
	Set(token string) error
	Clear() error
}

// Bootstrap acquires the session credential. The console shows the login
// screen for as long as Authenticated is false.
type Bootstrap struct {
	auth   Authenticator
	store  CredentialStore
	logger *log.Logger
}

func NewBootstrap(auth Authenticator, store CredentialStore, logger *log.Logger) *Bootstrap {
	return &Bootstrap{auth: auth, store: store, logger: orDiscard(logger)}
}

// Authenticated reports whether a credential is held.
func (b *Bootstrap) Authenticated() bool {
	return b.store.Token() != ""
}

// Login stores the credential on success. Every failure is reported as
// ErrAuth; nothing is retried.
func (b *Bootstrap) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrAuth
	}
	token, err := b.auth.Login(ctx, username, password)
	if err != nil {
		b.logger.Warn("login failed", "user", username, "err", err)
		return ErrAuth
	}
	if err := b.store.Set(token); err != nil {
		b.logger.Error("store credential", "err", err)
		return ErrAuth
	}
	b.logger.Info("logged in", "user", username)
	return nil
}

// Logout drops the credential.
func (b *Bootstrap) Logout() error {
	return b.store.Clear()
}
