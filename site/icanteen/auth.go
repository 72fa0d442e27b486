package icanteen

import (
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/kvo/std/errors"

	"mojejecna/site"
)

const (
	loginPath = "/login"
	checkPath = "/j_spring_security_check"

	fieldUser     = "j_username"
	fieldPass     = "j_password"
	fieldCSRF     = "_csrf"
	fieldRemember = "_spring_security_remember_me"
	fieldTarget   = "targetUrl"

	targetURL = "/faces/secured/main.jsp"
)

const selCSRF = `input[name="_csrf"]`

// Auth logs in to the canteen portal. The login form carries a hidden CSRF
// token that Spring Security validates against the session cookie, so the
// token fetch and the credential POST must share one session. A rejected
// login bounces back to the login page with login_error=1 in the query
// string; that is the only failure signal the portal gives.
func Auth(user site.User, session *site.Session) (bool, error) {
	session.Reset()

	doc, err := fetch(session, loginPath)
	if err != nil {
		session.Reset()
		return false, err
	}
	csrf, ok := doc.Find(selCSRF).Attr("value")
	if !ok || csrf == "" {
		session.Reset()
		return false, site.ErrNoLoginToken
	}

	form := url.Values{}
	form.Set(fieldUser, user.CanteenUsername)
	form.Set(fieldPass, user.CanteenPassword)
	form.Set(fieldCSRF, csrf)
	form.Set(fieldRemember, "false")
	form.Set(fieldTarget, targetURL)

	req, err := http.NewRequest("POST", BaseURL+checkPath, strings.NewReader(form.Encode()))
	if err != nil {
		session.Reset()
		return false, errors.New(err.Error(), nil)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := site.RoundTrip(client, req, session)
	if err != nil {
		session.Reset()
		return false, err
	}
	defer resp.Body.Close()

	if resp.Request.URL.Query().Get("login_error") == "1" {
		session.Reset()
		return false, nil
	}
	return true, nil
}

// Logout ends the portal session.
func Logout(user site.User, session *site.Session) error {
	_, err := fetch(session, "/logout")
	session.Reset()
	return err
}
