package sc4pac

import "testing"

func TestNewAuthStoreParsesEnvVar(t *testing.T) {
	t.Setenv(authEnvVar, `{"simtropolis.com":"cookie-a",".sc4evermore.com":"cookie-b"}`)
	a := NewAuthStore()
	if got := a.envCookie("simtropolis.com"); got != "cookie-a" {
		t.Errorf("envCookie(exact) = %q, want cookie-a", got)
	}
}

func TestAuthStoreEnvCookieExactMatch(t *testing.T) {
	a := &AuthStore{env: map[string]string{"simtropolis.com": "cookie-a"}}
	if got := a.envCookie("simtropolis.com"); got != "cookie-a" {
		t.Errorf("envCookie() = %q, want cookie-a", got)
	}
}

func TestAuthStoreEnvCookieDotSuffixMatch(t *testing.T) {
	a := &AuthStore{env: map[string]string{".sc4evermore.com": "cookie-b"}}
	if got := a.envCookie("files.sc4evermore.com"); got != "cookie-b" {
		t.Errorf("envCookie(subdomain) = %q, want cookie-b", got)
	}
}

func TestAuthStoreEnvCookieBareDomainAlsoMatchesAsSuffix(t *testing.T) {
	// A configured domain without a leading dot still matches subdomains,
	// per envCookie's suffix normalization.
	a := &AuthStore{env: map[string]string{"sc4evermore.com": "cookie-c"}}
	if got := a.envCookie("files.sc4evermore.com"); got != "cookie-c" {
		t.Errorf("envCookie(bare domain as suffix) = %q, want cookie-c", got)
	}
}

func TestAuthStoreEnvCookieNoMatchReturnsEmpty(t *testing.T) {
	a := &AuthStore{env: map[string]string{"simtropolis.com": "cookie-a"}}
	if got := a.envCookie("example.com"); got != "" {
		t.Errorf("envCookie(unconfigured host) = %q, want empty", got)
	}
}

func TestAuthStoreCookieFallsBackToEnvWhenNoKeyringOverride(t *testing.T) {
	// No SetCookie has been called in this test, so any keyring lookup
	// either misses or errors, and Cookie must fall back to envCookie
	// rather than surfacing the keyring error.
	a := &AuthStore{env: map[string]string{"simtropolis.com": "cookie-a"}}
	if got := a.Cookie("simtropolis.com"); got != "cookie-a" {
		t.Errorf("Cookie() = %q, want the env fallback cookie-a", got)
	}
}

func TestAuthStoreCookieUnconfiguredHostIsEmpty(t *testing.T) {
	a := &AuthStore{env: map[string]string{}}
	if got := a.Cookie("example.com"); got != "" {
		t.Errorf("Cookie() = %q, want empty for an unconfigured host", got)
	}
}
