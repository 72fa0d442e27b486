package spse

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/kvo/std/errors"
	"github.com/extrame/xls"

	"mojejecna/logger"
	"mojejecna/site"
)

// The extraordinary timetable is not a portal page: it is a spreadsheet
// maintained by the school office and published as-is, with much looser
// structure than the rest of the portal.
const extraPath = "/suplovani/suplovani.xls"

var (
	dateRe      = regexp.MustCompile(`^\d{1,2}\.\s*\d{1,2}\.\s*\d{4}$`)
	hourRangeRe = regexp.MustCompile(`^(\d+)\.\s*[-–]\s*(\d+)\.\s*hodin`)
	singleRe    = regexp.MustCompile(`^(\d+)\.\s*hodin`)
)

// Extra fetches and decodes the extraordinary timetable feed.
func Extra(user site.User, session *site.Session) (site.ExtraTimetable, error) {
	req, e := http.NewRequest("GET", BaseURL+extraPath, nil)
	if e != nil {
		return site.ExtraTimetable{}, errors.New(e.Error(), nil)
	}
	resp, err := site.RoundTrip(client, req, session)
	if err != nil {
		return site.ExtraTimetable{}, err
	}
	defer resp.Body.Close()
	body, e := io.ReadAll(resp.Body)
	if e != nil {
		return site.ExtraTimetable{}, errors.New(e.Error(), nil)
	}

	book, e := xls.OpenReader(bytes.NewReader(body), "utf-8")
	if e != nil {
		return site.ExtraTimetable{}, errors.New(e.Error(), nil)
	}

	var rows [][]string
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			var cells []string
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, strings.TrimSpace(row.Col(c)))
			}
			rows = append(rows, cells)
		}
	}
	return parseExtra(rows), nil
}

// parseExtra folds the raw spreadsheet grid into the date-keyed overlay.
// Row shapes, in the order the office writes them:
//
//	["15. 3. 2024"]                     a new date block
//	["Novák", "celý den"]               teacher absence, whole day
//	["Dvořák", "3. - 5. hodina"]        teacher absence, hour range
//	["Malá", "6. hodina"]               teacher absence, single hour
//	["Holub", "od 10:00 u lékaře"]      teacher absence, free text
//	["2", "E2A", "MAT", "Novák", "A4", "odpadá"]  substitution row
//
// Rows before the first date block, blank rows, and rows of any other
// shape are skipped; the feed is too irregular for anything stricter.
func parseExtra(rows [][]string) site.ExtraTimetable {
	var timetable site.ExtraTimetable
	var day *site.ExtraDay

	for _, cells := range rows {
		cells = trimRow(cells)
		if len(cells) == 0 {
			continue
		}
		if len(cells) == 1 && dateRe.MatchString(cells[0]) {
			timetable.Days = append(timetable.Days, site.ExtraDay{
				Date: strings.ReplaceAll(cells[0], " ", ""),
			})
			day = &timetable.Days[len(timetable.Days)-1]
			continue
		}
		if day == nil {
			continue
		}
		if hour, err := strconv.Atoi(cells[0]); err == nil {
			day.Substitutions = append(day.Substitutions, substitution(hour, cells))
			continue
		}
		if len(cells) >= 2 {
			day.Absences = append(day.Absences, absence(cells[0], cells[1]))
			continue
		}
		logger.Debug("skipping extraordinary row of unknown shape: %v", cells)
	}
	return timetable
}

func trimRow(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

func substitution(hour int, cells []string) site.Substitution {
	sub := site.Substitution{Hour: hour}
	fields := []*string{&sub.Class, &sub.Subject, &sub.Teacher, &sub.Room, &sub.Note}
	for i, field := range fields {
		if i+1 < len(cells) {
			*field = cells[i+1]
		}
	}
	return sub
}

// absence classifies one teacher absence row into its tagged variant.
// Anything that fails to parse stays available as free text: the office
// writes whatever it likes in that column.
func absence(teacher, spec string) site.TeacherAbsence {
	record := site.TeacherAbsence{Teacher: teacher}
	lower := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lower, "celý den"):
		record.Kind = site.AbsenceAllDay
	case hourRangeRe.MatchString(lower):
		m := hourRangeRe.FindStringSubmatch(lower)
		record.Kind = site.AbsenceHourRange
		record.From, _ = strconv.Atoi(m[1])
		record.To, _ = strconv.Atoi(m[2])
	case singleRe.MatchString(lower):
		m := singleRe.FindStringSubmatch(lower)
		record.Kind = site.AbsenceSingleHour
		record.From, _ = strconv.Atoi(m[1])
	default:
		record.Kind = site.AbsenceFreeText
		record.Note = spec
	}
	return record
}
