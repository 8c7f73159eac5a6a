package access

import (
	"fmt"
	"net/http"
)

// CookieName returns the grant cookie name scoped to one resource.
func CookieName(resourceID string) string {
	return fmt.Sprintf("x402_access_%s", resourceID)
}

// GrantCookie builds the entitlement cookie for a freshly issued grant.
// Host-only, SameSite=Lax; secure outside development.
func GrantCookie(resourceID, token string, maxAgeSeconds int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(resourceID),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// GrantFromRequest extracts the grant cookie value for a resource, if present.
func GrantFromRequest(r *http.Request, resourceID string) string {
	cookie, err := r.Cookie(CookieName(resourceID))
	if err != nil {
		return ""
	}
	return cookie.Value
}
