// Package spse scrapes the school information portal. The portal has no
// API: every operation fetches a server-rendered page and walks its HTML.
package spse

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/kvo/std/errors"
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

// BaseURL of the school portal. Overridable for tests and config.
var BaseURL = "https://www.spsejecna.cz"

var client = site.NewClient(30 * time.Second)

// Marker element that is only rendered for authenticated sessions. When it
// is empty or missing, the portal has served a logged-out page.
const selUserName = ".user-menu .user-name"

// fetch retrieves one portal page, rotating session cookies along the way.
func fetch(session *site.Session, path string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", BaseURL+path, nil)
	if err != nil {
		return nil, errors.New(err.Error(), nil)
	}
	resp, err := site.RoundTrip(client, req, session)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.New(err.Error(), nil)
	}
	return doc, nil
}

// loggedIn reports whether doc is an authenticated portal page.
func loggedIn(doc *goquery.Document) bool {
	return strings.TrimSpace(doc.Find(selUserName).Text()) != ""
}

// get retrieves an authenticated page. When the portal has silently
// dropped the session, it re-authenticates once with the cached
// credentials and refetches once; a second logged-out page is surfaced as
// a session error rather than retried again.
func get(user site.User, session *site.Session, path string) (*goquery.Document, error) {
	doc, err := fetch(session, path)
	if err != nil {
		return nil, err
	}
	if loggedIn(doc) {
		return doc, nil
	}
	ok, err := Auth(user, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, site.ErrSessionExpired
	}
	doc, err = fetch(session, path)
	if err != nil {
		return nil, err
	}
	if !loggedIn(doc) {
		return nil, site.ErrSessionExpired
	}
	return doc, nil
}

// clean collapses all whitespace runs in s, the way browsers render it.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
