package site

import (
	"net/http"
	"strings"
	"sync"
)

// Session holds the live cookie state for one portal. Every portal request
// reads its Cookie header from here and feeds every response back through
// Absorb, since both portals rotate session cookies on arbitrary
// responses. Access is mutex-guarded: two in-flight requests on the same
// session may complete out of order, and cookie updates must stay
// last-write-wins per cookie name rather than lost entirely.
type Session struct {
	mu      sync.Mutex
	cookies map[string]string
	order   []string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{cookies: make(map[string]string)}
}

// Absorb folds the Set-Cookie directives of resp into the session. Cookies
// are upserted per name; attributes (path, expiry) are not tracked, as the
// portals only ever rotate opaque session identifiers.
func (s *Session) Absorb(resp *http.Response) {
	if resp == nil {
		return
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cookie := range cookies {
		s.set(cookie.Name, cookie.Value)
	}
}

func (s *Session) set(name, value string) {
	if _, ok := s.cookies[name]; !ok {
		s.order = append(s.order, name)
	}
	s.cookies[name] = value
}

// Header renders the session as a send-able Cookie header value.
func (s *Session) Header() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.order))
	for _, name := range s.order {
		parts = append(parts, name+"="+s.cookies[name])
	}
	return strings.Join(parts, "; ")
}

// SetHeader replaces the session with cookies parsed from a previously
// rendered Cookie header.
func (s *Session) SetHeader(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = make(map[string]string)
	s.order = nil
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		s.set(name, value)
	}
}

// Reset drops all session state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = make(map[string]string)
	s.order = nil
}

// Empty reports whether the session holds no cookies.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cookies) == 0
}

// Sessions maps portal names to their live cookie sessions. The two
// portals are fully independent and may be exercised concurrently.
type Sessions map[string]*Session

// NewSessions builds sessions for both portals, rehydrated from the
// user's persisted cookie headers where present.
func NewSessions(user User) Sessions {
	sessions := Sessions{
		PortalSchool:  NewSession(),
		PortalCanteen: NewSession(),
	}
	for portal, header := range user.SiteTokens {
		if session, ok := sessions[portal]; ok && header != "" {
			session.SetHeader(header)
		}
	}
	return sessions
}
