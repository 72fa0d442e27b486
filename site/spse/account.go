package spse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const accountPath = "/user-student/self"

// Account returns the student's own profile record.
func Account(user site.User, session *site.Session) (site.AccountInfo, error) {
	doc, err := get(user, session, accountPath)
	if err != nil {
		return site.AccountInfo{}, err
	}

	info := site.AccountInfo{}
	info.Name = clean(doc.Find("h1.profile-name").Text())
	doc.Find("table.userprofile tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSuffix(clean(row.Find("th").Text()), ":")
		value := clean(row.Find("td").Text())
		switch label {
		case "Třída":
			info.Class = value
		case "Skupina":
			info.Group = value
		case "E-mail":
			info.Email = value
		case "Telefon":
			info.Phone = value
		case "Adresa":
			info.Address = value
		case "Datum narození":
			info.Birthday = value
		}
	})
	if info.Name == "" {
		return site.AccountInfo{}, site.ErrInvalidResp
	}
	return info, nil
}
