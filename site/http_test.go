package site

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRoundTripAbsorbsRedirectCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "hop"})
			http.Redirect(w, r, "/end", http.StatusFound)
		case "/end":
			if cookie, err := r.Cookie("JSESSIONID"); err != nil || cookie.Value != "hop" {
				t.Error("redirect target did not receive the rotated cookie")
			}
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "final"})
			io.WriteString(w, "ok")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	session := NewSession()
	req, err := http.NewRequest("GET", srv.URL+"/start", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := RoundTrip(NewClient(5*time.Second), req, session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if !strings.Contains(session.Header(), "JSESSIONID=final") {
		t.Errorf("final cookie not absorbed: %q", session.Header())
	}
}

func TestRoundTripRedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	req, err := http.NewRequest("GET", srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := RoundTrip(NewClient(5*time.Second), req, NewSession())
	if err == nil {
		t.Fatal("expected an error for an endless redirect chain")
	}
	// The response must not leak alongside the error: callers only close
	// bodies on the success path.
	if resp != nil {
		t.Error("response should be nil when an error is returned")
	}
}
