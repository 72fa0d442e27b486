package spse

import (
	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

// Years returns the school year and half-year selector options published on
// the grades page. The selected option of each list marks the portal's
// current term.
func Years(user site.User, session *site.Session) ([]site.Option, []site.Option, error) {
	doc, err := get(user, session, gradesPath)
	if err != nil {
		return nil, nil, err
	}

	years := parseOptions(doc, "select#schoolYearId option")
	halves := parseOptions(doc, "select#schoolYearHalfId option")
	if len(years) == 0 {
		return nil, nil, site.ErrInvalidResp
	}
	return years, halves, nil
}

func parseOptions(doc *goquery.Document, selector string) []site.Option {
	var opts []site.Option
	doc.Find(selector).Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		label := clean(opt.Text())
		if value == "" || label == "" {
			return
		}
		_, selected := opt.Attr("selected")
		opts = append(opts, site.Option{Id: value, Label: label, Selected: selected})
	})
	return opts
}
