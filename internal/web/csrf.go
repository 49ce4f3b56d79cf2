package web

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	keyCSRF    = "csrf"
	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// newCSRFToken returns a random token for the forms of one session.
func newCSRFToken() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("failed to generate csrf token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func csrfToken(sess *sessions.Session) string {
	tok, _ := sess.Values[keyCSRF].(string)
	return tok
}

// validCSRF reports whether r is a safe method or carries the session's
// token in the X-CSRF-Token header or the csrf_token form field.
func validCSRF(r *http.Request, sess *sessions.Session) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	want := csrfToken(sess)
	got := r.Header.Get(csrfHeader)
	if got == "" {
		got = r.PostFormValue(csrfField)
	}
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
