package site

import (
	"codeberg.org/kvo/std/errors"
)

// Function signatures portal packages provide to the multiplexer. Every
// function receives the user's credentials and the live session of its
// portal; session recovery happens inside the portal packages.
type (
	AuthFunc       func(User, *Session) (bool, error)
	LogoutFunc     func(User, *Session) error
	GradesFunc     func(User, *Session, Term) ([]SubjectGrades, error)
	TimetableFunc  func(User, *Session, Term) (Timetable, error)
	ExtraFunc      func(User, *Session) (ExtraTimetable, error)
	AbsencesFunc   func(User, *Session, Term) (AbsenceList, error)
	AttendanceFunc func(User, *Session, Term, string) ([]AttendanceDay, error)
	TeachersFunc   func(User, *Session) ([]Teacher, error)
	TeacherFunc    func(User, *Session, string) (Teacher, error)
	RoomsFunc      func(User, *Session) ([]Room, error)
	RoomFunc       func(User, *Session, string) (Room, error)
	NewsFunc       func(User, *Session) ([]NewsItem, error)
	YearsFunc      func(User, *Session) ([]Option, []Option, error)
	AccountFunc    func(User, *Session) (AccountInfo, error)
	MenuFunc       func(User, *Session) ([]CanteenDay, error)
	BurzaFunc      func(User, *Session) ([]CanteenItem, error)
	ActionFunc     func(User, *Session, CanteenItem) error
)

type binding[F any] struct {
	portal string
	f      F
}

// Mux is a portal multiplexer. The per-portal retrieval and mutation
// functions are registered on it at enrolment time, and it exposes the
// single API the app talks to. The Mux itself is stateless and shared;
// per-user state travels in User and Sessions.
type Mux struct {
	auth       map[string]AuthFunc
	logout     map[string]LogoutFunc
	grades     binding[GradesFunc]
	timetable  binding[TimetableFunc]
	extra      binding[ExtraFunc]
	absences   binding[AbsencesFunc]
	attendance binding[AttendanceFunc]
	teachers   binding[TeachersFunc]
	teacher    binding[TeacherFunc]
	rooms      binding[RoomsFunc]
	room       binding[RoomFunc]
	news       binding[NewsFunc]
	years      binding[YearsFunc]
	account    binding[AccountFunc]
	menu       binding[MenuFunc]
	burza      binding[BurzaFunc]
	order      binding[ActionFunc]
	exchange   binding[ActionFunc]
}

// Return a new instance of Mux.
func NewMux() *Mux {
	m := new(Mux)
	m.auth = make(map[string]AuthFunc)
	m.logout = make(map[string]LogoutFunc)
	return m
}

// AddAuth adds the authentication function f for the named portal.
func (m *Mux) AddAuth(portal string, f AuthFunc) {
	m.auth[portal] = f
}

// AddLogout adds the logout function f for the named portal.
func (m *Mux) AddLogout(portal string, f LogoutFunc) {
	m.logout[portal] = f
}

func (m *Mux) SetGrades(portal string, f GradesFunc)         { m.grades = binding[GradesFunc]{portal, f} }
func (m *Mux) SetTimetable(portal string, f TimetableFunc)   { m.timetable = binding[TimetableFunc]{portal, f} }
func (m *Mux) SetExtra(portal string, f ExtraFunc)           { m.extra = binding[ExtraFunc]{portal, f} }
func (m *Mux) SetAbsences(portal string, f AbsencesFunc)     { m.absences = binding[AbsencesFunc]{portal, f} }
func (m *Mux) SetAttendance(portal string, f AttendanceFunc) { m.attendance = binding[AttendanceFunc]{portal, f} }
func (m *Mux) SetTeachers(portal string, f TeachersFunc)     { m.teachers = binding[TeachersFunc]{portal, f} }
func (m *Mux) SetTeacher(portal string, f TeacherFunc)       { m.teacher = binding[TeacherFunc]{portal, f} }
func (m *Mux) SetRooms(portal string, f RoomsFunc)           { m.rooms = binding[RoomsFunc]{portal, f} }
func (m *Mux) SetRoom(portal string, f RoomFunc)             { m.room = binding[RoomFunc]{portal, f} }
func (m *Mux) SetNews(portal string, f NewsFunc)             { m.news = binding[NewsFunc]{portal, f} }
func (m *Mux) SetYears(portal string, f YearsFunc)           { m.years = binding[YearsFunc]{portal, f} }
func (m *Mux) SetAccount(portal string, f AccountFunc)       { m.account = binding[AccountFunc]{portal, f} }
func (m *Mux) SetMenu(portal string, f MenuFunc)             { m.menu = binding[MenuFunc]{portal, f} }
func (m *Mux) SetBurza(portal string, f BurzaFunc)           { m.burza = binding[BurzaFunc]{portal, f} }
func (m *Mux) SetOrder(portal string, f ActionFunc)          { m.order = binding[ActionFunc]{portal, f} }
func (m *Mux) SetExchange(portal string, f ActionFunc)       { m.exchange = binding[ActionFunc]{portal, f} }

// Auth authenticates to the named portals concurrently using the
// credentials carried by *user. The rendered cookie header of each
// successful portal login is stored in user.SiteTokens. ok is false when
// at least one portal rejected the credentials; err reports structural or
// network failure.
func (m *Mux) Auth(user *User, sessions Sessions, portals ...string) (bool, error) {
	if user == nil {
		return false, errors.New("user is nil", nil)
	}
	if user.SiteTokens == nil {
		user.SiteTokens = make(map[string]string)
	}
	ch := make(chan Pair[string, error])
	launched := 0
	for _, portal := range portals {
		f, okf := m.auth[portal]
		session, oks := sessions[portal]
		if !okf || !oks {
			return false, errors.New("unsupported portal: "+portal, nil)
		}
		launched++
		go func(portal string, f AuthFunc, session *Session) {
			ok, err := f(*user, session)
			if err == nil && !ok {
				err = ErrAuthFailed
			}
			ch <- Pair[string, error]{portal, err}
		}(portal, f, session)
	}
	ok := true
	var fatal error
	for i := 0; i < launched; i++ {
		result := <-ch
		portal, err := result.First, result.Second
		if err == ErrAuthFailed {
			ok = false
			continue
		}
		if err != nil {
			ok = false
			if fatal == nil {
				fatal = err
			}
			continue
		}
		user.SiteTokens[portal] = sessions[portal].Header()
	}
	if fatal != nil {
		return false, fatal
	}
	return ok, nil
}

// Logout ends every portal session the user holds and clears the stored
// cookie headers. Errors are collected, not short-circuited: a dead portal
// must not keep another portal's session alive.
func (m *Mux) Logout(user *User, sessions Sessions) error {
	var first error
	for portal, f := range m.logout {
		session, ok := sessions[portal]
		if !ok {
			continue
		}
		if err := f(*user, session); err != nil && first == nil {
			first = err
		}
		delete(user.SiteTokens, portal)
	}
	return first
}

func (m *Mux) session(sessions Sessions, portal string) (*Session, error) {
	if portal == "" {
		return nil, errors.New("function not set", nil)
	}
	session, ok := sessions[portal]
	if !ok {
		return nil, errors.New("no session for portal: "+portal, nil)
	}
	return session, nil
}

// Grades returns the grade splits per subject for the given term.
func (m *Mux) Grades(user User, sessions Sessions, term Term) ([]SubjectGrades, error) {
	session, err := m.session(sessions, m.grades.portal)
	if err != nil {
		return nil, err
	}
	return m.grades.f(user, session, term)
}

// Timetable returns the regular weekly timetable for the given term.
func (m *Mux) Timetable(user User, sessions Sessions, term Term) (Timetable, error) {
	session, err := m.session(sessions, m.timetable.portal)
	if err != nil {
		return Timetable{}, err
	}
	return m.timetable.f(user, session, term)
}

// Extra returns the extraordinary timetable overlay.
func (m *Mux) Extra(user User, sessions Sessions) (ExtraTimetable, error) {
	session, err := m.session(sessions, m.extra.portal)
	if err != nil {
		return ExtraTimetable{}, err
	}
	return m.extra.f(user, session)
}

// Absences returns the student absence ledger for the given term.
func (m *Mux) Absences(user User, sessions Sessions, term Term) (AbsenceList, error) {
	session, err := m.session(sessions, m.absences.portal)
	if err != nil {
		return AbsenceList{}, err
	}
	return m.absences.f(user, session, term)
}

// Attendance returns arrival/departure records for the given term and
// month selector value.
func (m *Mux) Attendance(user User, sessions Sessions, term Term, month string) ([]AttendanceDay, error) {
	session, err := m.session(sessions, m.attendance.portal)
	if err != nil {
		return nil, err
	}
	return m.attendance.f(user, session, term, month)
}

// Teachers returns the teacher directory.
func (m *Mux) Teachers(user User, sessions Sessions) ([]Teacher, error) {
	session, err := m.session(sessions, m.teachers.portal)
	if err != nil {
		return nil, err
	}
	return m.teachers.f(user, session)
}

// Teacher returns one teacher profile by code.
func (m *Mux) Teacher(user User, sessions Sessions, code string) (Teacher, error) {
	session, err := m.session(sessions, m.teacher.portal)
	if err != nil {
		return Teacher{}, err
	}
	return m.teacher.f(user, session, code)
}

// Rooms returns the room directory.
func (m *Mux) Rooms(user User, sessions Sessions) ([]Room, error) {
	session, err := m.session(sessions, m.rooms.portal)
	if err != nil {
		return nil, err
	}
	return m.rooms.f(user, session)
}

// Room returns one room profile by code.
func (m *Mux) Room(user User, sessions Sessions, code string) (Room, error) {
	session, err := m.session(sessions, m.room.portal)
	if err != nil {
		return Room{}, err
	}
	return m.room.f(user, session, code)
}

// News returns the portal news/event feed.
func (m *Mux) News(user User, sessions Sessions) ([]NewsItem, error) {
	session, err := m.session(sessions, m.news.portal)
	if err != nil {
		return nil, err
	}
	return m.news.f(user, session)
}

// Years returns the school year and half-term selector options.
func (m *Mux) Years(user User, sessions Sessions) ([]Option, []Option, error) {
	session, err := m.session(sessions, m.years.portal)
	if err != nil {
		return nil, nil, err
	}
	return m.years.f(user, session)
}

// Account returns the student's own profile record.
func (m *Mux) Account(user User, sessions Sessions) (AccountInfo, error) {
	session, err := m.session(sessions, m.account.portal)
	if err != nil {
		return AccountInfo{}, err
	}
	return m.account.f(user, session)
}

// Menu returns the canteen menu for the current month.
func (m *Mux) Menu(user User, sessions Sessions) ([]CanteenDay, error) {
	session, err := m.session(sessions, m.menu.portal)
	if err != nil {
		return nil, err
	}
	return m.menu.f(user, session)
}

// Burza returns the current meal exchange listing.
func (m *Mux) Burza(user User, sessions Sessions) ([]CanteenItem, error) {
	session, err := m.session(sessions, m.burza.portal)
	if err != nil {
		return nil, err
	}
	return m.burza.f(user, session)
}

// Order replays the item's scraped order action.
func (m *Mux) Order(user User, sessions Sessions, item CanteenItem) error {
	session, err := m.session(sessions, m.order.portal)
	if err != nil {
		return err
	}
	return m.order.f(user, session, item)
}

// Exchange replays the item's scraped exchange action.
func (m *Mux) Exchange(user User, sessions Sessions, item CanteenItem) error {
	session, err := m.session(sessions, m.exchange.portal)
	if err != nil {
		return err
	}
	return m.exchange.f(user, session, item)
}
