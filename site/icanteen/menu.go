package icanteen

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/logger"
	"mojejecna/site"
)

const monthPath = "/faces/secured/month.jsp"

// Menu returns the canteen menu for the current month. When the pickup
// location of every parsed day comes back empty, the portal has served a
// hollow page to a silently dropped session; Menu re-authenticates once
// with the cached credentials and refetches once.
func Menu(user site.User, session *site.Session) ([]site.CanteenDay, error) {
	return menu(user, session, false)
}

func menu(user site.User, session *site.Session, retried bool) ([]site.CanteenDay, error) {
	doc, err := fetch(session, monthPath)
	if err != nil {
		return nil, err
	}
	days := parseMenu(doc)
	if located(days) {
		return days, nil
	}
	if retried {
		return nil, site.ErrSessionExpired
	}
	ok, err := Auth(user, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, site.ErrSessionExpired
	}
	return menu(user, session, true)
}

// located reports whether at least one day carries a pickup location. The
// portal renders the location on every day of a live session, so an
// all-empty month means the session degraded, not that the field moved.
func located(days []site.CanteenDay) bool {
	for _, day := range days {
		if day.Location != "" {
			return true
		}
	}
	return false
}

func parseMenu(doc *goquery.Document) []site.CanteenDay {
	var days []site.CanteenDay
	doc.Find("div.jidelnicekDen").Each(func(_ int, div *goquery.Selection) {
		id, _ := div.Attr("id")
		date := strings.TrimPrefix(id, "day-")
		if date == id || date == "" {
			return
		}
		day := site.CanteenDay{
			Date:     date,
			DayName:  clean(div.Find("div.jidelnicekTop").First().Text()),
			Location: clean(div.Find("span.vydejna").First().Text()),
		}
		div.Find("div.jidelnicekItem").Each(func(_ int, row *goquery.Selection) {
			item, ok := parseItem(row)
			if !ok {
				return
			}
			if soup, dish, split := strings.Cut(item.Name, ","); split {
				if day.Soup == "" {
					day.Soup = strings.TrimSpace(soup)
				}
				item.Name = strings.TrimSpace(dish)
			}
			day.Items = append(day.Items, item)
		})
		days = append(days, day)
	})
	return days
}

// parseItem reads one dish row. The row has no structured data: every
// field lives in its own sub-element, and the server-side call is buried
// in the button's JavaScript click handler.
func parseItem(row *goquery.Selection) (site.CanteenItem, bool) {
	button := row.Find("a.btn.order-action").First()
	if button.Length() == 0 {
		return site.CanteenItem{}, false
	}

	item := site.CanteenItem{}
	switch label := clean(button.Find("span.button-link-align").Text()); label {
	case "objednat":
		item.Action = "order"
	case "zrušit":
		item.Action = "cancel"
	case "doobjednat":
		item.Action = "reorder"
	default:
		logger.Debug("canteen: unknown action label: %s", label)
		return site.CanteenItem{}, false
	}

	item.Ordered = button.Find("i.fa-check").Length() > 0
	item.Disabled = button.HasClass("disabled")
	item.Price = clean(row.Find("span.important").First().Text())

	name := row.Find("span.jidelnicekItemNazev").First()
	bare := name.Clone()
	bare.Find("sub").Remove()
	item.Name = clean(bare.Text())
	name.Find("sub").Each(func(_ int, sub *goquery.Selection) {
		for _, code := range strings.Split(sub.Text(), ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				item.Allergens = append(item.Allergens, code)
			}
		}
	})

	if title, ok := button.Attr("title"); ok {
		item.OrderFrom, item.OrderUntil, item.CancelUntil, item.PickupUntil = parseDeadlines(title)
	}
	if onclick, ok := button.Attr("onclick"); ok {
		item.Params = handlerParams(onclick)
	}

	// The two exchange controls never appear together: an ordered meal can
	// only be released, an unordered one only claimed.
	if in := row.Find("a.btn.burza-in").First(); in.Length() > 0 {
		item.Burzable = true
		item.BurzaType = site.BurzaIn
		if onclick, ok := in.Attr("onclick"); ok {
			item.BurzaParams = handlerParams(onclick)
		}
	} else if out := row.Find("a.btn.burza-out").First(); out.Length() > 0 {
		item.Burzable = true
		item.BurzaType = site.BurzaOut
		if onclick, ok := out.Attr("onclick"); ok {
			item.BurzaParams = handlerParams(onclick)
		}
	}
	return item, true
}

// parseDeadlines reads the tooltip attribute, four labeled timestamps
// joined by pipes: "objednat od: A|objednat do: B|zrušit do: C|výdej do: D".
func parseDeadlines(title string) (orderFrom, orderUntil, cancelUntil, pickupUntil string) {
	for _, part := range strings.Split(title, "|") {
		label, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(label) {
		case "objednat od":
			orderFrom = value
		case "objednat do":
			orderUntil = value
		case "zrušit do":
			cancelUntil = value
		case "výdej do":
			pickupUntil = value
		}
	}
	return
}

var handlerURLRe = regexp.MustCompile(`'([^']*\?[^']*)'`)

// handlerParams extracts the quoted URL out of a JavaScript click handler
// and returns its query string as an opaque parameter bag. The bag is
// replayed verbatim later; nothing in it is interpreted here.
func handlerParams(onclick string) url.Values {
	match := handlerURLRe.FindStringSubmatch(onclick)
	if match == nil {
		return nil
	}
	_, query, ok := strings.Cut(match[1], "?")
	if !ok {
		return nil
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		logger.Debug("canteen: unparsable handler query: %s", query)
		return nil
	}
	return params
}
