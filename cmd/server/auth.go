package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "quotedesk_session"

// cookieSigner binds quote session ids to the server secret so a client
// cannot guess its way into another session.
type cookieSigner struct {
	secret []byte
	ttl    time.Duration
}

func newCookieSigner(secret string, ttl time.Duration) *cookieSigner {
	return &cookieSigner{secret: []byte(secret), ttl: ttl}
}

func (c *cookieSigner) sign(sessionID string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(sessionID))
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

func (c *cookieSigner) verify(value string) (string, bool) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	provided, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(provided, mac.Sum(nil)) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

// sessionID returns the verified session id carried by the request, if any.
func (c *cookieSigner) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return c.verify(cookie.Value)
}

// setCookie issues the session cookie. It is sent again on every request that
// resumes the session, so its lifetime follows the session's idle expiry.
func (c *cookieSigner) setCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.sign(sessionID),
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
