package icanteen

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mojejecna/site"
)

const canteenLoginPage = `<html><body>
<form action="/j_spring_security_check" method="post">
<input type="hidden" name="_csrf" value="csrf456"/>
</form></body></html>`

// fixtureCanteen simulates the Spring Security login flow: the login page
// sets the session cookie the CSRF token is bound to, and the security
// check redirects back to the login page with login_error=1 on failure.
func fixtureCanteen(t *testing.T, badCreds bool) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == loginPath:
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fresh"})
			io.WriteString(w, canteenLoginPage)
		case r.Method == "POST" && r.URL.Path == checkPath:
			r.ParseForm()
			cookie, err := r.Cookie("JSESSIONID")
			if err != nil || cookie.Value != "fresh" || r.PostForm.Get(fieldCSRF) != "csrf456" {
				t.Error("security check did not carry session cookie and CSRF token together")
			}
			if badCreds || r.PostForm.Get(fieldUser) != "jidelna" {
				http.Redirect(w, r, "/login?login_error=1", http.StatusFound)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "authed"})
			http.Redirect(w, r, targetURL, http.StatusFound)
		case r.URL.Path == targetURL:
			io.WriteString(w, "<html><body>hlavní stránka</body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })
}

func canteenUser() site.User {
	return site.User{CanteenUsername: "jidelna", CanteenPassword: "heslo"}
}

func TestAuth(t *testing.T) {
	fixtureCanteen(t, false)
	session := site.NewSession()

	ok, err := Auth(canteenUser(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("auth failed with valid credentials")
	}
	if !strings.Contains(session.Header(), "JSESSIONID=authed") {
		t.Errorf("rotated session cookie not absorbed: %q", session.Header())
	}
}

func TestAuthBadCredentials(t *testing.T) {
	fixtureCanteen(t, true)
	session := site.NewSession()

	ok, err := Auth(canteenUser(), session)
	if err != nil {
		t.Fatalf("bad credentials must not be an error, got: %v", err)
	}
	if ok {
		t.Fatal("auth should have failed on login_error=1")
	}
	if !session.Empty() {
		t.Error("cookies must be cleared after a rejected login")
	}
}

func TestAuthMissingCSRF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><form></form></body></html>")
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })

	session := site.NewSession()
	_, err := Auth(canteenUser(), session)
	if err != site.ErrNoLoginToken {
		t.Fatalf("expected ErrNoLoginToken, got: %v", err)
	}
	if !session.Empty() {
		t.Error("cookies must stay unset after a failed token fetch")
	}
}
