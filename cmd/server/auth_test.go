package main

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieSignerRoundTrip(t *testing.T) {
	c := newCookieSigner("secret", time.Hour)

	id, ok := c.verify(c.sign("4f1c2f1e-session"))
	if !ok || id != "4f1c2f1e-session" {
		t.Fatalf("expected signed id to verify, got %q %v", id, ok)
	}
}

func TestCookieSignerRejectsTampering(t *testing.T) {
	c := newCookieSigner("secret", time.Hour)
	other := newCookieSigner("other", time.Hour)

	signed := c.sign("abc")
	cases := map[string]string{
		"other secret":  other.sign("abc"),
		"no signature":  "YWJj",
		"bad hex":       "YWJj.zz",
		"swapped id":    c.sign("xyz")[:4] + signed[4:],
		"empty payload": "." + signed[5:],
	}
	for name, value := range cases {
		if _, ok := c.verify(value); ok {
			t.Fatalf("%s: expected verification to fail", name)
		}
	}
}

func TestCookieSignerReadsRequestCookie(t *testing.T) {
	c := newCookieSigner("secret", time.Hour)

	rec := httptest.NewRecorder()
	c.setCookie(rec, "abc")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/api/session", nil)
	req.AddCookie(cookies[0])
	if id, ok := c.sessionID(req); !ok || id != "abc" {
		t.Fatalf("expected session id from cookie, got %q %v", id, ok)
	}

	if _, ok := c.sessionID(httptest.NewRequest("GET", "/api/session", nil)); ok {
		t.Fatalf("expected no session without cookie")
	}
}
