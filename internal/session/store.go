// Package session holds the console's single bearer credential.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store owns the active credential. With a path, the credential is also
// sealed into that file (0600) so it survives a restart; without one it
// lives only in memory. The sealing key is bound to the OS user and the
// file's absolute location, so a copied file does not open elsewhere.
type Store struct {
	mu    sync.RWMutex
	token string
	path  string
	aead  cipher.AEAD
}

// sealed is the on-disk form. Byte slices marshal as base64.
type sealed struct {
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

var errCorrupt = errors.New("corrupt session file")

// NewStore returns a store, restoring a previously persisted credential when
// path points at a readable session file. An unreadable file is discarded.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &Store{}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("session path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}
	aead, err := sealer(abs)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	s := &Store{path: abs, aead: aead}
	token, err := s.read()
	if err != nil {
		_ = os.Remove(abs)
		return s, nil
	}
	s.token = token
	return s, nil
}

func sealer(abs string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte("contratos\x00" + os.Getenv("USER") + "\x00" + abs))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Token returns the active credential or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a credential is held.
func (s *Store) Active() bool {
	return s.Token() != ""
}

// Set replaces the active credential.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty credential")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		if err := s.write(token); err != nil {
			return fmt.Errorf("persist credential: %w", err)
		}
	}
	s.token = token
	return nil
}

// Clear drops the credential and its persisted copy.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drop()
}

// ClearIf drops the credential only while it is still token. A rejection
// that arrives after a newer login leaves the newer credential in place.
func (s *Store) ClearIf(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.token != token {
		return nil
	}
	return s.drop()
}

// drop requires s.mu held for writing.
func (s *Store) drop() error {
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *Store) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var f sealed
	if err := json.Unmarshal(data, &f); err != nil {
		return "", err
	}
	if len(f.Nonce) != s.aead.NonceSize() {
		return "", errCorrupt
	}
	plain, err := s.aead.Open(nil, f.Nonce, f.Data, nil)
	if err != nil {
		return "", errCorrupt
	}
	return string(plain), nil
}

// write replaces the session file atomically; CreateTemp opens it 0600.
func (s *Store) write(token string) error {
	f := sealed{Nonce: make([]byte, s.aead.NonceSize())}
	if _, err := rand.Read(f.Nonce); err != nil {
		return err
	}
	f.Data = s.aead.Seal(nil, f.Nonce, []byte(token), nil)
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
