package spse

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const attendancePath = "/user-student/record-of-the-school-attendance"

// Attendance returns the chip reader arrival/departure records for the
// given term and month selector value ("" for the current month).
func Attendance(user site.User, session *site.Session, term site.Term, month string) ([]site.AttendanceDay, error) {
	q := url.Values{}
	if term.Year != "" {
		q.Set("schoolYearId", term.Year)
	}
	if month != "" {
		q.Set("schoolYearPartMonthId", month)
	}
	path := attendancePath
	if len(q) != 0 {
		path += "?" + q.Encode()
	}

	doc, err := get(user, session, path)
	if err != nil {
		return nil, err
	}

	var days []site.AttendanceDay
	doc.Find("table.attendance tbody tr").Each(func(_ int, row *goquery.Selection) {
		date := clean(row.Find("td.date").Text())
		if date == "" {
			return
		}
		day := site.AttendanceDay{Date: date}
		row.Find("td.events span.pass").Each(func(_ int, span *goquery.Selection) {
			text := clean(span.Text())
			event, ok := parsePass(text)
			if !ok {
				return
			}
			day.Events = append(day.Events, event)
		})
		days = append(days, day)
	})
	return days, nil
}

// parsePass reads one passing event, "Příchod 7:25" or "Odchod 14:10".
func parsePass(text string) (site.PassEvent, bool) {
	kind, at, ok := strings.Cut(text, " ")
	if !ok {
		return site.PassEvent{}, false
	}
	switch kind {
	case "Příchod":
		return site.PassEvent{Time: at, Arrival: true}, true
	case "Odchod":
		return site.PassEvent{Time: at, Arrival: false}, true
	}
	return site.PassEvent{}, false
}
