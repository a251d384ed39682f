package oauth

import (
	"sync"
	"time"
)

const cleanupInterval = time.Minute

// Store provides thread-safe in-memory storage for registered clients,
// pending authorization codes and issued access tokens. Codes and tokens
// expire; a background loop sweeps them out.
type Store struct {
	mu      sync.RWMutex
	clients map[string]*Client
	codes   map[string]*authCode
	tokens  map[string]*accessToken

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewStore creates a store and starts its expiry sweep.
func NewStore() *Store {
	s := &Store{
		clients:     make(map[string]*Client),
		codes:       make(map[string]*authCode),
		tokens:      make(map[string]*accessToken),
		stopCleanup: make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// Stop terminates the background cleanup loop.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// PutClient registers or replaces a client.
func (s *Store) PutClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ClientID] = client
}

// GetClient returns the registered client with the given ID.
func (s *Store) GetClient(clientID string) (*Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	return client, ok
}

// PutCode stores a pending authorization code.
func (s *Store) PutCode(code *authCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = code
}

// ConsumeCode returns the code record and marks it used. A code can be
// consumed exactly once; expired or already-used codes return false.
func (s *Store) ConsumeCode(code string) (*authCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok || record.Used || time.Now().After(record.ExpiresAt) {
		return nil, false
	}

	record.Used = true
	return record, true
}

// PutToken stores an issued access token.
func (s *Store) PutToken(token *accessToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
}

// GetToken returns the token record if it exists and has not expired.
func (s *Store) GetToken(token string) (*accessToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.tokens[token]
	if !ok || time.Now().After(record.ExpiresAt) {
		return nil, false
	}
	return record, true
}

// cleanupLoop periodically removes expired codes and tokens.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) cleanupExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for code, record := range s.codes {
		if record.Used || now.After(record.ExpiresAt) {
			delete(s.codes, code)
		}
	}
	for token, record := range s.tokens {
		if now.After(record.ExpiresAt) {
			delete(s.tokens, token)
		}
	}
}
