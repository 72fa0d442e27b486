package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"mojejecna/logger"
	"mojejecna/site"
)

// request bundles everything a portal call needs: the resolved user and
// the live portal sessions rehydrated from the persisted cookie headers.
type request struct {
	user     site.User
	sessions site.Sessions
}

// resolve authenticates the request against the token cookie. A missing
// or expired token gets 401 and a nil request.
func resolve(w http.ResponseWriter, r *http.Request) *request {
	user, err := db.getCreds(r.Header.Get("Cookie"))
	if err == site.ErrInvalidAuth {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil
	}
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	return &request{user: user, sessions: site.NewSessions(user)}
}

// done persists any portal cookie rotation that happened during the
// request.
func (req *request) done() {
	db.saveTokens(req.user, req.sessions)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Error(err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// portalError maps extraction failures onto API status codes. Expired
// portal sessions and portal timeouts are the portal's fault, not the
// client's, and get distinct bodies so the app can tell them apart.
func portalError(w http.ResponseWriter, err error) {
	switch err {
	case site.ErrSessionExpired:
		writeError(w, http.StatusBadGateway, "portal session expired")
	case site.ErrTimeout:
		writeError(w, http.StatusGatewayTimeout, "portal timed out")
	case site.ErrNotFound:
		writeError(w, http.StatusNotFound, "not found")
	case site.ErrNoParams:
		writeError(w, http.StatusBadRequest, "item carries no action parameters")
	default:
		logger.Error(err)
		writeError(w, http.StatusBadGateway, "portal error")
	}
}

func reqTerm(r *http.Request) site.Term {
	return site.Term{
		Year: r.URL.Query().Get("year"),
		Half: r.URL.Query().Get("term"),
	}
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	err := r.ParseForm()
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	cookie, err := db.auth(r.PostForm)
	if err == site.ErrAuthFailed {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}
	if err != nil {
		portalError(w, err)
		return
	}
	w.Header().Set("Set-Cookie", cookie)
	writeJSON(w, map[string]string{"status": "ok"})
}

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	err := db.logout(req.user, req.sessions)
	if err != nil {
		logger.Error(err)
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func gradesHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	grades, err := mux.Grades(req.user, req.sessions, reqTerm(r))
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, grades)
}

func yearsHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	years, halves, err := mux.Years(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, map[string][]site.Option{"years": years, "halves": halves})
}

func timetableHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	timetable, err := mux.Timetable(req.user, req.sessions, reqTerm(r))
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, timetable)
}

func timetablePNGHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	timetable, err := mux.Timetable(req.user, req.sessions, reqTerm(r))
	if err != nil {
		portalError(w, err)
		return
	}
	err = renderTimetable(w, timetable)
	if err != nil {
		logger.Error(err)
		writeError(w, http.StatusInternalServerError, "render failed")
	}
}

func extraHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	extra, err := mux.Extra(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, extra)
}

func absencesHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	absences, err := mux.Absences(req.user, req.sessions, reqTerm(r))
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, absences)
}

func attendanceHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	days, err := mux.Attendance(req.user, req.sessions, reqTerm(r), r.URL.Query().Get("month"))
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, days)
}

func teachersHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	teachers, err := mux.Teachers(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, teachers)
}

func teacherHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	code := strings.TrimPrefix(r.URL.EscapedPath(), "/teachers/")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing teacher code")
		return
	}
	teacher, err := mux.Teacher(req.user, req.sessions, code)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, teacher)
}

func roomsHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	rooms, err := mux.Rooms(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, rooms)
}

func roomHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	code := strings.TrimPrefix(r.URL.EscapedPath(), "/rooms/")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing room code")
		return
	}
	room, err := mux.Room(req.user, req.sessions, code)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, room)
}

func newsHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	news, err := mux.News(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, news)
}

func accountHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	info, err := mux.Account(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, info)
}

func menuHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	menu, err := mux.Menu(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, menu)
}

// actionRequest carries the opaque parameter bag of a previously scraped
// canteen item. The server replays it verbatim; it never builds one.
type actionRequest struct {
	Params url.Values `json:"params"`
}

func orderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	var action actionRequest
	err := json.NewDecoder(r.Body).Decode(&action)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	err = mux.Order(req.user, req.sessions, site.CanteenItem{Params: action.Params})
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// burzaHandler serves the exchange listing on GET and replays an exchange
// action on POST.
func burzaHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()
	if r.Method == http.MethodPost {
		var action actionRequest
		err := json.NewDecoder(r.Body).Decode(&action)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		err = mux.Exchange(req.user, req.sessions, site.CanteenItem{BurzaParams: action.Params})
		if err != nil {
			portalError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
		return
	}
	items, err := mux.Burza(req.user, req.sessions)
	if err != nil {
		portalError(w, err)
		return
	}
	writeJSON(w, items)
}
