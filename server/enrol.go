package server

import (
	"mojejecna/site"
	"mojejecna/site/icanteen"
	"mojejecna/site/spse"
)

// enrol registers both portals' functions on a fresh multiplexer. This is
// the single place where portal packages and operations are bound
// together.
func enrol() *site.Mux {
	m := site.NewMux()

	m.AddAuth(site.PortalSchool, spse.Auth)
	m.AddLogout(site.PortalSchool, spse.Logout)
	m.SetGrades(site.PortalSchool, spse.Grades)
	m.SetTimetable(site.PortalSchool, spse.Timetable)
	m.SetExtra(site.PortalSchool, spse.Extra)
	m.SetAbsences(site.PortalSchool, spse.Absences)
	m.SetAttendance(site.PortalSchool, spse.Attendance)
	m.SetTeachers(site.PortalSchool, spse.Teachers)
	m.SetTeacher(site.PortalSchool, spse.Teacher)
	m.SetRooms(site.PortalSchool, spse.Rooms)
	m.SetRoom(site.PortalSchool, spse.Room)
	m.SetNews(site.PortalSchool, spse.News)
	m.SetYears(site.PortalSchool, spse.Years)
	m.SetAccount(site.PortalSchool, spse.Account)

	m.AddAuth(site.PortalCanteen, icanteen.Auth)
	m.AddLogout(site.PortalCanteen, icanteen.Logout)
	m.SetMenu(site.PortalCanteen, icanteen.Menu)
	m.SetBurza(site.PortalCanteen, icanteen.Burza)
	m.SetOrder(site.PortalCanteen, icanteen.Order)
	m.SetExchange(site.PortalCanteen, icanteen.Exchange)

	return m
}
