package icanteen

import (
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const burzaPath = "/faces/secured/burza.jsp"

// Burza returns the current meal exchange listing as a flat item list.
// The exchange page reuses the menu's dish row markup, so the items share
// one parser with Menu.
func Burza(user site.User, session *site.Session) ([]site.CanteenItem, error) {
	doc, err := fetch(session, burzaPath)
	if err != nil {
		return nil, err
	}
	var items []site.CanteenItem
	doc.Find("div.jidelnicekItem").Each(func(_ int, row *goquery.Selection) {
		item, ok := parseItem(row)
		if !ok {
			return
		}
		items = append(items, item)
	})
	return items, nil
}
