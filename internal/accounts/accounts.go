// Package accounts keeps the demo service's user accounts in memory with
// bcrypt password hashes.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("accounts: invalid username or password")
	ErrExists             = errors.New("accounts: username taken")
)

// Account is a stored user. The hash never leaves the package.
type Account struct {
	Username string
	Email    string
	hash     []byte
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	// Cost is the bcrypt cost for new hashes. Tests lower it to bcrypt.MinCost.
	Cost int
}

func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account), Cost: bcrypt.DefaultCost}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Add creates an account.
func (s *Store) Add(username, email, password string) (*Account, error) {
	key := normalize(username)
	if key == "" {
		return nil, fmt.Errorf("accounts: empty username")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("accounts: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; ok {
		return nil, ErrExists
	}
	a := &Account{Username: key, Email: email, hash: hash}
	s.accounts[key] = a
	return a, nil
}

// Get returns the account for username, if any.
func (s *Store) Get(username string) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[normalize(username)]
	return a, ok
}

// Authenticate checks a password. Unknown users and wrong passwords both
// yield ErrInvalidCredentials.
func (s *Store) Authenticate(username, password string) (*Account, error) {
	a, ok := s.Get(username)
	if !ok {
		// Keep the timing close to a real comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// SetPassword replaces an account's password.
func (s *Store) SetPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[normalize(username)]
	if !ok {
		return ErrInvalidCredentials
	}
	a.hash = hash
	return nil
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fhurl-dummy"), bcrypt.MinCost)
