package site

import "net/url"

// Portal names used as keys for sessions and persisted cookie headers.
const (
	PortalSchool  = "spse"
	PortalCanteen = "icanteen"
)

// Pair represents a tuple of two elements.
type Pair[T, U any] struct {
	First  T
	Second U
}

// User represents an authenticated Moje Ječná user. SiteTokens holds the
// last rendered Cookie header per portal, for session rehydration.
type User struct {
	Token           string
	Username        string
	Password        string
	CanteenUsername string
	CanteenPassword string
	SiteTokens      map[string]string
}

// Term identifies a school year and one half of it, as understood by the
// school portal's period selectors. Zero values mean the current term.
type Term struct {
	Year string
	Half string
}

// Query renders the term as a portal query string, or "" for the current
// term.
func (t Term) Query() string {
	q := url.Values{}
	if t.Year != "" {
		q.Set("schoolYearId", t.Year)
	}
	if t.Half != "" {
		q.Set("schoolYearHalfId", t.Half)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Option is one entry of a portal select control (school years, term
// halves, months).
type Option struct {
	Id       string
	Label    string
	Selected bool
}

// Grade represents a single grade entry within a subject split.
type Grade struct {
	Value        int     // 1..5; 0 when Absent or Commendation is set
	Absent       bool    // the "N" sentinel
	Commendation bool    // written commendation, carries no numeric value
	Weight       float64 // 1.0, or 0.5 for minor grades
	Date         string
	Note         string
	Teacher      string
	Key          string // stable identity used for previously-seen diffing
}

// Split is a sub-grouping of grades within one subject, e.g. theory vs.
// lab. Splits preserve document order.
type Split struct {
	Label  string
	Grades []Grade
}

// SubjectGrades holds the grade splits of one subject.
type SubjectGrades struct {
	Subject string
	Splits  []Split
	Final   string // finalized term grade, "" while the term is open
}

// Empty reports whether the subject has no grades in any split.
func (s SubjectGrades) Empty() bool {
	for _, split := range s.Splits {
		if len(split.Grades) != 0 {
			return false
		}
	}
	return true
}

// Period is one column of the timetable grid.
type Period struct {
	Number int
	Time   string
}

// Lesson is one lesson within a timetable cell.
type Lesson struct {
	Subject     string // short form, e.g. "MAT"
	SubjectName string
	Teacher     string // teacher code
	TeacherName string
	Room        string
	Group       string // parallel-group label, "" for whole-class lessons
}

// Day is one row of the timetable grid. Cells align positionally with the
// period axis; a cell holding more than one lesson is a split period.
type Day struct {
	Name  string
	Cells [][]Lesson
}

// Timetable is the regular weekly schedule.
type Timetable struct {
	Periods []Period
	Days    []Day
}

// AbsenceKind tags the shape of a teacher absence record in the
// extraordinary timetable feed.
type AbsenceKind int

const (
	AbsenceAllDay AbsenceKind = iota
	AbsenceHourRange
	AbsenceSingleHour
	AbsenceFreeText
)

// TeacherAbsence is one teacher absence record. Which fields are
// meaningful depends on Kind.
type TeacherAbsence struct {
	Kind    AbsenceKind
	Teacher string
	From    int    // first absent hour (AbsenceHourRange, AbsenceSingleHour)
	To      int    // last absent hour (AbsenceHourRange)
	Note    string // raw text (AbsenceFreeText)
}

// Substitution is one override row of the extraordinary timetable.
type Substitution struct {
	Hour    int
	Class   string
	Subject string
	Teacher string
	Room    string
	Note    string
}

// ExtraDay holds the substitutions and teacher absences for one date.
type ExtraDay struct {
	Date          string
	Absences      []TeacherAbsence
	Substitutions []Substitution
}

// ExtraTimetable is the out-of-band substitute schedule overlay.
type ExtraTimetable struct {
	Days []ExtraDay
}

// Day returns the overlay for the given date, if present.
func (t ExtraTimetable) Day(date string) (ExtraDay, bool) {
	for _, day := range t.Days {
		if day.Date == date {
			return day, true
		}
	}
	return ExtraDay{}, false
}

// AbsenceEntry is one row of the student absence ledger.
type AbsenceEntry struct {
	Date      string
	Hours     int
	Unexcused int
}

// AbsenceList is the student absence ledger for one term.
type AbsenceList struct {
	Entries        []AbsenceEntry
	TotalHours     int
	TotalUnexcused int
}

// PassEvent is one chip reader event at the school entrance.
type PassEvent struct {
	Time    string
	Arrival bool
}

// AttendanceDay holds the arrival/departure events of one day.
type AttendanceDay struct {
	Date   string
	Events []PassEvent
}

// Teacher is a teacher directory record. Room is a weak reference to the
// room the teacher manages, resolvable through the room directory.
type Teacher struct {
	Code          string
	Name          string
	Email         string
	Phone         string
	Room          string
	Consultations string
}

// Room is a room directory record. Manager is a weak reference to the
// managing teacher's code.
type Room struct {
	Code    string
	Name    string
	Floor   string
	Manager string
}

// NewsItem is one news/event entry from the portal front page.
type NewsItem struct {
	Title string
	Date  string
	Body  string
	Link  string
}

// AccountInfo is the student's own profile record.
type AccountInfo struct {
	Name     string
	Class    string
	Group    string
	Email    string
	Phone    string
	Address  string
	Birthday string
}

// BurzaKind says which way an item can move through the meal exchange.
type BurzaKind string

const (
	BurzaIn  BurzaKind = "in"  // release an ordered meal into the exchange
	BurzaOut BurzaKind = "out" // claim a meal from the exchange
)

// CanteenItem is one orderable dish. Params and BurzaParams are opaque
// key-value bags scraped out of the page's own click handlers; they are
// replayed verbatim to the order-processing endpoint and never constructed
// by the client. BurzaType is set iff Burzable is true.
type CanteenItem struct {
	Name        string
	Allergens   []string
	Price       string
	Action      string // "order", "cancel" or "reorder"
	Ordered     bool
	Disabled    bool
	OrderFrom   string
	OrderUntil  string
	CancelUntil string
	PickupUntil string
	Burzable    bool
	BurzaType   BurzaKind
	Params      url.Values
	BurzaParams url.Values
}

// CanteenDay is one day of the monthly canteen menu.
type CanteenDay struct {
	Date     string
	DayName  string
	Soup     string
	Location string
	Items    []CanteenItem
}
