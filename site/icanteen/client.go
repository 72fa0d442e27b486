// Package icanteen scrapes the iCanteen meal-ordering portal. The portal
// is a JSF application behind Spring Security; it exposes no API, so every
// operation walks a server-rendered page and replays the page's own click
// handler URLs for mutations.
package icanteen

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/kvo/std/errors"
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

// BaseURL of the canteen instance, including the canteen number.
// Overridable for tests and config.
var BaseURL = "https://strav.nasejidelna.cz/0341"

var client = site.NewClient(30 * time.Second)

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

// clean collapses all whitespace runs in s, the way browsers render it.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
