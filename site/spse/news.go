package spse

import (
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

// News returns the news/event feed from the portal front page.
func News(user site.User, session *site.Session) ([]site.NewsItem, error) {
	doc, err := get(user, session, "/")
	if err != nil {
		return nil, err
	}

	var items []site.NewsItem
	doc.Find("div.event").Each(func(_ int, div *goquery.Selection) {
		item := site.NewsItem{
			Title: clean(div.Find("h3").Text()),
			Date:  clean(div.Find("span.date").Text()),
			Body:  clean(div.Find("p").Text()),
		}
		if item.Title == "" {
			return
		}
		if href, ok := div.Find("a").Attr("href"); ok {
			item.Link = href
		}
		items = append(items, item)
	})
	return items, nil
}
