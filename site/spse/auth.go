package spse

import (
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/kvo/std/errors"
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

// Form field names are fixed by the portal's login form.
const (
	loginPath   = "/user/login"
	logoutPath  = "/user/logout"
	fieldUser   = "user3"
	fieldPass   = "pass3"
	fieldToken  = "token3"
	fieldSubmit = "submit"
	submitLabel = "Přihlásit se"
)

const selLoginToken = `input[name="token3"]`
const selLoginError = ".error-message"

// loginToken fetches the login page and extracts the hidden form token.
// A missing token is fatal for the attempt: either the portal markup
// changed or the service is down, and retrying will not help.
func loginToken(session *site.Session) (string, error) {
	doc, err := fetch(session, loginPath)
	if err != nil {
		return "", err
	}
	token, ok := doc.Find(selLoginToken).Attr("value")
	if !ok || token == "" {
		return "", site.ErrNoLoginToken
	}
	return token, nil
}

// Auth performs the full login sequence against the school portal: fetch
// the hidden token, submit the credentials, and inspect the resulting page
// for the portal's error element. Bad credentials return (false, nil); an
// error is returned only for structural or network failure.
func Auth(user site.User, session *site.Session) (bool, error) {
	session.Reset()
	token, err := loginToken(session)
	if err != nil {
		session.Reset()
		return false, err
	}

	form := url.Values{}
	form.Set(fieldUser, user.Username)
	form.Set(fieldPass, user.Password)
	form.Set(fieldToken, token)
	form.Set(fieldSubmit, submitLabel)

	req, e := http.NewRequest("POST", BaseURL+loginPath, strings.NewReader(form.Encode()))
	if e != nil {
		return false, errors.New(e.Error(), nil)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := site.RoundTrip(client, req, session)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	doc, e := goquery.NewDocumentFromReader(resp.Body)
	if e != nil {
		return false, errors.New(e.Error(), nil)
	}

	if msg := strings.TrimSpace(doc.Find(selLoginError).Text()); msg != "" {
		return false, nil
	}
	return loggedIn(doc), nil
}

// Logout ends the portal session server-side and drops the local cookie
// state regardless of the outcome.
func Logout(user site.User, session *site.Session) error {
	_, err := fetch(session, logoutPath)
	session.Reset()
	return err
}
