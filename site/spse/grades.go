package spse

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/logger"
	"mojejecna/site"
)

const gradesPath = "/score/student"

// Label given to the implicit split of subjects whose grade cell carries
// no split markers at all.
const noGroupLabel = "no grouping"

// Grades returns the per-subject grade splits for the given term. Subjects
// with no grades are kept (the caller can filter them with Empty).
// Malformed grade links are dropped, not surfaced: a single broken entry
// must not take the whole extraction down.
func Grades(user site.User, session *site.Session, term site.Term) ([]site.SubjectGrades, error) {
	doc, err := get(user, session, gradesPath+term.Query())
	if err != nil {
		return nil, err
	}

	var subjects []site.SubjectGrades
	doc.Find("table.score tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := clean(row.Find("th.subject").Text())
		if name == "" {
			return
		}
		subject := site.SubjectGrades{Subject: name}
		subject.Splits = gradeSplits(name, row.Find("td.grades").First())
		subject.Final = clean(row.Find("td.scoreFinal").Text())
		subjects = append(subjects, subject)
	})
	return subjects, nil
}

// gradeSplits walks the children of a subject's grade cell in document
// order. The markup encodes grouping by sibling adjacency, not nesting: a
// strong split marker opens a new group and everything after it belongs to
// that group until the next marker.
func gradeSplits(subject string, cell *goquery.Selection) []site.Split {
	var splits []site.Split
	current := site.Split{}

	flush := func() {
		if current.Label == "" && len(current.Grades) == 0 {
			return
		}
		if current.Label == "" {
			current.Label = noGroupLabel
		}
		splits = append(splits, current)
		current = site.Split{}
	}

	cell.Children().Each(func(_ int, node *goquery.Selection) {
		switch {
		case node.Is("strong.subjectPart"):
			flush()
			current.Label = strings.TrimSuffix(clean(node.Text()), ":")
		case node.Is("a.score"):
			grade, ok := parseGrade(subject, node)
			if !ok {
				return
			}
			current.Grades = append(current.Grades, grade)
		}
	})
	flush()
	return splits
}

// parseGrade turns one grade link into a Grade. Only the sentinel "N" and
// the integers 1..5 are accepted as values; anything else means markup
// drift and the entry is dropped.
func parseGrade(subject string, node *goquery.Selection) (site.Grade, bool) {
	grade := site.Grade{Weight: 1.0}
	if node.HasClass("scoreSmall") {
		grade.Weight = 0.5
	}

	if title, ok := node.Attr("title"); ok {
		grade.Note, grade.Date, grade.Teacher = parseGradeTitle(title)
	}

	value := clean(node.Find("span.value").Text())
	switch {
	case node.HasClass("commendation"):
		grade.Commendation = true
	case value == "N":
		grade.Absent = true
	default:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 5 {
			logger.Debug("dropping grade with value %q in %q", value, subject)
			return site.Grade{}, false
		}
		grade.Value = n
	}

	grade.Key = gradeKey(subject, grade)
	return grade, true
}

// parseGradeTitle splits the combined title attribute of a grade link,
// shaped "note (date, teacher)". The split happens on the LAST opening
// parenthesis so that notes containing parentheses stay intact.
func parseGradeTitle(title string) (note, date, teacher string) {
	i := strings.LastIndex(title, "(")
	if i == -1 {
		return strings.TrimSpace(title), "", ""
	}
	note = strings.TrimSpace(title[:i])
	inside := strings.TrimSuffix(strings.TrimSpace(title[i+1:]), ")")
	date, teacher, ok := strings.Cut(inside, ",")
	if !ok {
		return note, strings.TrimSpace(inside), ""
	}
	return note, strings.TrimSpace(date), strings.TrimSpace(teacher)
}

// gradeKey derives the stable identity used to diff previously-seen
// grades against fresh extractions.
func gradeKey(subject string, grade site.Grade) string {
	value := strconv.Itoa(grade.Value)
	if grade.Absent {
		value = "N"
	}
	if grade.Commendation {
		value = "*"
	}
	return strings.Join([]string{subject, grade.Date, value, grade.Note}, "|")
}
