package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// Store is the global cookie store for login sessions. The cookie only
// carries an opaque session token; the token-to-user mapping lives in
// the server-side SessionStore.
var Store *sessions.CookieStore

// SessionName is the name of the login session cookie.
const SessionName = "tasklane_session"

// SessionKeyToken is the session value key holding the opaque token.
const SessionKeyToken = "token"

// InitSessionStore initializes the cookie-based session store.
//
// The secret parameter signs session cookies. It can be any passphrase -
// it will be SHA-256 hashed to derive a 32-byte key. The secret must be
// consistent across server restarts and multiple servers in a
// load-balanced deployment.
//
// Security settings:
// - HttpOnly: true (inaccessible to JavaScript)
// - Secure: from settings (HTTPS only in production)
// - SameSite: Lax (cookie survives top-level navigation)
func InitSessionStore(secret string, settings CookieSettings, maxAgeSeconds int) {
	// Hash the secret to get a consistent 32-byte key
	key := sha256.Sum256([]byte(secret))

	Store = sessions.NewCookieStore(key[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// GetSession retrieves the login session from the request.
// Creates a new session if one doesn't exist.
func GetSession(r *http.Request) (*sessions.Session, error) {
	return Store.Get(r, SessionName)
}

// SaveSession saves the session to the response.
func SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return session.Save(r, w)
}

// TokenFromRequest extracts the opaque session token from the request
// cookie. Returns empty string when no valid cookie is present.
func TokenFromRequest(r *http.Request) string {
	session, err := GetSession(r)
	if err != nil {
		return ""
	}
	token, _ := session.Values[SessionKeyToken].(string)
	return token
}
