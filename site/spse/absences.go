package spse

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/logger"
	"mojejecna/site"
)

const absencesPath = "/absence/student"

// Absences returns the student absence ledger for the given term.
func Absences(user site.User, session *site.Session, term site.Term) (site.AbsenceList, error) {
	doc, err := get(user, session, absencesPath+term.Query())
	if err != nil {
		return site.AbsenceList{}, err
	}

	var list site.AbsenceList
	doc.Find("table.absence-list tbody tr").Each(func(_ int, row *goquery.Selection) {
		date := clean(row.Find("td.date").Text())
		if date == "" {
			return
		}
		hours, ok := leadingInt(row.Find("td.count").Text())
		if !ok {
			logger.Debug("skipping absence row with bad hour count on %s", date)
			return
		}
		unexcused, _ := leadingInt(row.Find("td.unexcused").Text())
		list.Entries = append(list.Entries, site.AbsenceEntry{
			Date:      date,
			Hours:     hours,
			Unexcused: unexcused,
		})
		list.TotalHours += hours
		list.TotalUnexcused += unexcused
	})
	return list, nil
}

// leadingInt parses the integer prefix of strings like "6 hodin".
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
