package spse

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mojejecna/site"
)

// userMenu is the authenticated-page marker every fixture page carries
// unless the test wants to simulate a dropped session.
const userMenu = `<div class="user-menu"><span class="user-name">Jan Novák</span></div>`

// serve runs a fixture portal serving the given path->HTML pages and
// points BaseURL at it for the duration of the test.
func serve(t *testing.T, pages map[string]string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<html><body>"+userMenu+page+"</body></html>")
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })
}

func testUser() site.User {
	return site.User{Username: "student", Password: "heslo"}
}
