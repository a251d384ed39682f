package oauth

import (
	"testing"
	"time"
)

func TestStore_Clients(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	if _, ok := store.GetClient("missing"); ok {
		t.Error("Expected lookup of unknown client to fail")
	}

	store.PutClient(&Client{ClientID: "client-1", RedirectURIs: []string{"https://example.com/cb"}})

	client, ok := store.GetClient("client-1")
	if !ok {
		t.Fatal("Expected client to be found")
	}
	if !client.RedirectURIAllowed("https://example.com/cb") {
		t.Error("Expected registered redirect URI to be allowed")
	}
	if client.RedirectURIAllowed("https://evil.example.com/cb") {
		t.Error("Expected unregistered redirect URI to be rejected")
	}
}

func TestStore_ConsumeCode_SingleUse(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	store.PutCode(&authCode{
		Code:      "code-1",
		Request:   &AuthRequest{ClientID: "client-1"},
		UserID:    "user-1",
		Session:   &Session{User: "user-1", APIKey: "key"},
		ExpiresAt: time.Now().Add(time.Minute),
	})

	record, ok := store.ConsumeCode("code-1")
	if !ok {
		t.Fatal("Expected first consume to succeed")
	}
	if record.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", record.UserID)
	}

	if _, ok := store.ConsumeCode("code-1"); ok {
		t.Error("Expected second consume of same code to fail")
	}
}

func TestStore_ConsumeCode_Expired(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	store.PutCode(&authCode{
		Code:      "stale",
		Request:   &AuthRequest{},
		ExpiresAt: time.Now().Add(-time.Second),
	})

	if _, ok := store.ConsumeCode("stale"); ok {
		t.Error("Expected expired code to be rejected")
	}
}

func TestStore_Tokens(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	store.PutToken(&accessToken{
		Token:     "tok-live",
		Session:   &Session{User: "u", APIKey: "k"},
		ExpiresAt: time.Now().Add(time.Minute),
	})
	store.PutToken(&accessToken{
		Token:     "tok-stale",
		Session:   &Session{User: "u", APIKey: "k"},
		ExpiresAt: time.Now().Add(-time.Second),
	})

	if _, ok := store.GetToken("tok-live"); !ok {
		t.Error("Expected live token to resolve")
	}
	if _, ok := store.GetToken("tok-stale"); ok {
		t.Error("Expected expired token to be rejected")
	}
	if _, ok := store.GetToken("tok-unknown"); ok {
		t.Error("Expected unknown token to be rejected")
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	store.PutCode(&authCode{Code: "stale", Request: &AuthRequest{}, ExpiresAt: time.Now().Add(-time.Second)})
	store.PutToken(&accessToken{Token: "stale", ExpiresAt: time.Now().Add(-time.Second)})
	store.PutToken(&accessToken{Token: "live", ExpiresAt: time.Now().Add(time.Hour)})

	store.cleanupExpired()

	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.codes["stale"]; ok {
		t.Error("Expected expired code to be swept")
	}
	if _, ok := store.tokens["stale"]; ok {
		t.Error("Expected expired token to be swept")
	}
	if _, ok := store.tokens["live"]; !ok {
		t.Error("Expected live token to survive sweep")
	}
}
