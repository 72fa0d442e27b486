package spse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const teachersPath = "/ucitel"

// Teachers returns the teacher directory: codes and names only. Full
// profiles come from Teacher, one page per code.
func Teachers(user site.User, session *site.Session) ([]site.Teacher, error) {
	doc, err := get(user, session, teachersPath)
	if err != nil {
		return nil, err
	}

	var teachers []site.Teacher
	doc.Find("ul.teacher-list li a").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		code := lastSegment(href)
		name := clean(link.Text())
		if code == "" || name == "" {
			return
		}
		teachers = append(teachers, site.Teacher{Code: code, Name: name})
	})
	return teachers, nil
}

// Teacher returns one teacher profile. The profile page is a plain
// label/value table; unknown labels are ignored so that new portal fields
// do not break the extraction.
func Teacher(user site.User, session *site.Session, code string) (site.Teacher, error) {
	doc, err := get(user, session, teachersPath+"/"+code)
	if err != nil {
		return site.Teacher{}, err
	}

	teacher := site.Teacher{Code: code}
	teacher.Name = clean(doc.Find("h1.profile-name").Text())
	if teacher.Name == "" {
		return site.Teacher{}, site.ErrNotFound
	}
	doc.Find("table.userprofile tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSuffix(clean(row.Find("th").Text()), ":")
		value := clean(row.Find("td").Text())
		switch label {
		case "E-mail":
			teacher.Email = value
		case "Telefon":
			teacher.Phone = value
		case "Kabinet":
			href, _ := row.Find("td a").Attr("href")
			teacher.Room = lastSegment(href)
			if teacher.Room == "" {
				teacher.Room = value
			}
		case "Konzultační hodiny":
			teacher.Consultations = value
		}
	})
	return teacher, nil
}

// lastSegment returns the final path element of a link target, which is
// how the portal encodes directory record codes.
func lastSegment(href string) string {
	href = strings.TrimSuffix(strings.TrimSpace(href), "/")
	if href == "" {
		return ""
	}
	if i := strings.LastIndex(href, "/"); i != -1 {
		return href[i+1:]
	}
	return href
}
