package sc4pac

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// authKeyringService is the zalando/go-keyring service name sc4pac-core
// stores authenticated-host session cookies under.
const authKeyringService = "sc4pac-core"

// authEnvVar holds authentication cookies for specific hosts, supplied as a
// JSON object mapping a configured domain (exact host or a dot-prefixed
// suffix such as ".simtropolis.com") to its cookie header value. The env var's own keys are the "configured domain"
// set; there is no separate config-file field for it.
const authEnvVar = "SC4PAC_AUTH_COOKIES"

// AuthStore resolves the session cookie to attach to a download request's
// host, and persists a locally-set override in the OS keyring (Keychain /
// Secret Service / Credential Manager) so a cookie set once via SetCookie
// survives process restarts without re-exporting the environment variable.
type AuthStore struct {
	env map[string]string
}

// NewAuthStore constructs an AuthStore, parsing authEnvVar once if set.
func NewAuthStore() *AuthStore {
	env := map[string]string{}
	if raw := os.Getenv(authEnvVar); raw != "" {
		_ = json.Unmarshal([]byte(raw), &env)
	}
	return &AuthStore{env: env}
}

// SetCookie stores cookie as the session credential for host, overriding
// whatever authEnvVar declares for it.
func (a *AuthStore) SetCookie(host, cookie string) error {
	if err := keyring.Set(authKeyringService, host, cookie); err != nil {
		return fmt.Errorf("authstore: set cookie for %s: %w", host, err)
	}
	return nil
}

// Cookie returns the session cookie to attach for host: a keyring override
// if one was set via SetCookie, else an exact match from authEnvVar, else
// the first dot-suffix match found (in map iteration order, so with several
// matching domains which one wins is not defined), else "". It never returns an error for a plain not-found case,
// so it can be used directly as a FileCache.SetSessionCookieResolver callback.
func (a *AuthStore) Cookie(host string) string {
	if cookie, err := keyring.Get(authKeyringService, host); err == nil {
		return cookie
	}
	return a.envCookie(host)
}

// envCookie matches host against authEnvVar's configured domains: an exact
// key match, or a key that is a dot-suffix of host.
func (a *AuthStore) envCookie(host string) string {
	if cookie, ok := a.env[host]; ok {
		return cookie
	}
	for domain, cookie := range a.env {
		suffix := domain
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		if strings.HasSuffix(host, suffix) {
			return cookie
		}
	}
	return ""
}

// ClearCookie removes the stored keyring override for host, if any. It does
// not affect authEnvVar, which is only ever read, never persisted.
func (a *AuthStore) ClearCookie(host string) error {
	if err := keyring.Delete(authKeyringService, host); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("authstore: clear cookie for %s: %w", host, err)
	}
	return nil
}
