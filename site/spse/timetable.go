package spse

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const timetablePath = "/timetable/class"

// Timetable returns the regular weekly timetable for the given term. The
// period and day axes are independent in the markup; cells are read
// positionally so that a day's N-th cell always lines up with the N-th
// period, and cells holding several lessons (parallel groups) keep all of
// them.
func Timetable(user site.User, session *site.Session, term site.Term) (site.Timetable, error) {
	doc, err := get(user, session, timetablePath+term.Query())
	if err != nil {
		return site.Timetable{}, err
	}

	var timetable site.Timetable
	table := doc.Find("table.timetable").First()
	table.Find("tr").First().Find("th.period").Each(func(_ int, th *goquery.Selection) {
		timetable.Periods = append(timetable.Periods, parsePeriod(th))
	})

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		day := site.Day{Name: clean(row.Find("th.day").Text())}
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			var cell []site.Lesson
			td.Find("div.lesson").Each(func(_ int, div *goquery.Selection) {
				cell = append(cell, parseLesson(div))
			})
			day.Cells = append(day.Cells, cell)
		})
		// The row may be ragged when the portal omits trailing empty
		// cells; the cell axis must still match the period axis.
		for len(day.Cells) < len(timetable.Periods) {
			day.Cells = append(day.Cells, nil)
		}
		if len(day.Cells) > len(timetable.Periods) {
			day.Cells = day.Cells[:len(timetable.Periods)]
		}
		timetable.Days = append(timetable.Days, day)
	})
	return timetable, nil
}

// parsePeriod reads one period header cell: the period number as the cell
// text, the time range in a nested span.
func parsePeriod(th *goquery.Selection) site.Period {
	timeRange := clean(th.Find("span").Text())
	label := clean(strings.Replace(th.Text(), th.Find("span").Text(), "", 1))
	number, _ := strconv.Atoi(label)
	return site.Period{Number: number, Time: timeRange}
}

func parseLesson(div *goquery.Selection) site.Lesson {
	lesson := site.Lesson{
		Subject: clean(div.Find("span.subject").Text()),
		Teacher: clean(div.Find("span.teacher").Text()),
		Room:    clean(div.Find("span.room").Text()),
		Group:   clean(div.Find("span.group").Text()),
	}
	if long, ok := div.Find("span.subject").Attr("title"); ok {
		lesson.SubjectName = strings.TrimSpace(long)
	}
	if full, ok := div.Find("span.teacher").Attr("title"); ok {
		lesson.TeacherName = strings.TrimSpace(full)
	}
	return lesson
}
