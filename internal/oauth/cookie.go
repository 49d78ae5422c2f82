package oauth

import (
	"fmt"
	"sync"

	"github.com/gorilla/sessions"
)

// MinCookieSecretLength is the minimum acceptable secret length for the
// login-form CSRF cookie store.
const MinCookieSecretLength = 32 // bytes

var (
	cookieStoreInstance *sessions.CookieStore
	cookieStoreOnce     sync.Once
	cookieStoreErr      error
)

// InitCookieStore initializes the global cookie store singleton used to
// carry CSRF state across the /authorize login form's GET→POST hop. Must
// be called once at startup before any handler uses GetCookieStore.
func InitCookieStore(secret string) error {
	cookieStoreOnce.Do(func() {
		if len(secret) < MinCookieSecretLength {
			cookieStoreErr = fmt.Errorf("oauth cookie secret must be at least %d bytes", MinCookieSecretLength)
			return
		}
		cookieStoreInstance = sessions.NewCookieStore([]byte(secret))
	})
	return cookieStoreErr
}

// GetCookieStore returns the global cookie store singleton. Panics if
// InitCookieStore has not been called successfully.
func GetCookieStore() *sessions.CookieStore {
	if cookieStoreInstance == nil {
		panic("oauth: cookie store not initialized - call InitCookieStore first")
	}
	return cookieStoreInstance
}
