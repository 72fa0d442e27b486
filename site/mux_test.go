package site

import (
	"testing"

	"codeberg.org/kvo/std/errors"
)

func muxWithAuth(schoolOK, canteenOK bool) *Mux {
	m := NewMux()
	m.AddAuth(PortalSchool, func(user User, session *Session) (bool, error) {
		if schoolOK {
			session.SetHeader("JSESSIONID=school")
		}
		return schoolOK, nil
	})
	m.AddAuth(PortalCanteen, func(user User, session *Session) (bool, error) {
		if canteenOK {
			session.SetHeader("JSESSIONID=canteen")
		}
		return canteenOK, nil
	})
	return m
}

func TestMuxAuthBothPortals(t *testing.T) {
	m := muxWithAuth(true, true)
	user := User{Username: "student"}
	sessions := NewSessions(user)

	ok, err := m.Auth(&user, sessions, PortalSchool, PortalCanteen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("auth reported failure")
	}
	if user.SiteTokens[PortalSchool] != "JSESSIONID=school" {
		t.Errorf("school token not stored: %q", user.SiteTokens[PortalSchool])
	}
	if user.SiteTokens[PortalCanteen] != "JSESSIONID=canteen" {
		t.Errorf("canteen token not stored: %q", user.SiteTokens[PortalCanteen])
	}
}

func TestMuxAuthBadCredentials(t *testing.T) {
	m := muxWithAuth(true, false)
	user := User{Username: "student"}
	sessions := NewSessions(user)

	ok, err := m.Auth(&user, sessions, PortalSchool, PortalCanteen)
	if err != nil {
		t.Fatalf("bad credentials must not be an error, got: %v", err)
	}
	if ok {
		t.Fatal("auth should report failure when one portal rejects")
	}
	if user.SiteTokens[PortalSchool] != "JSESSIONID=school" {
		t.Error("successful portal's token should still be stored")
	}
	if _, exists := user.SiteTokens[PortalCanteen]; exists {
		t.Error("failed portal must not store a token")
	}
}

func TestMuxAuthStructuralFailure(t *testing.T) {
	m := NewMux()
	m.AddAuth(PortalSchool, func(User, *Session) (bool, error) {
		return false, errors.New("connection refused", nil)
	})
	user := User{}
	sessions := NewSessions(user)

	ok, err := m.Auth(&user, sessions, PortalSchool)
	if err == nil {
		t.Fatal("expected structural error")
	}
	if ok {
		t.Error("auth must not report success on structural failure")
	}
}

func TestMuxAuthUnsupportedPortal(t *testing.T) {
	m := NewMux()
	user := User{}
	if _, err := m.Auth(&user, NewSessions(user), "nosuch"); err == nil {
		t.Fatal("expected error for unregistered portal")
	}
}

func TestMuxLogout(t *testing.T) {
	m := muxWithAuth(true, true)
	m.AddLogout(PortalSchool, func(user User, session *Session) error {
		session.Reset()
		return nil
	})
	m.AddLogout(PortalCanteen, func(user User, session *Session) error {
		session.Reset()
		return nil
	})

	user := User{Username: "student"}
	sessions := NewSessions(user)
	if _, err := m.Auth(&user, sessions, PortalSchool, PortalCanteen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Logout(&user, sessions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(user.SiteTokens) != 0 {
		t.Errorf("site tokens not cleared: %v", user.SiteTokens)
	}
}

func TestMuxOperationWithoutBinding(t *testing.T) {
	m := NewMux()
	user := User{}
	if _, err := m.Grades(user, NewSessions(user), Term{}); err == nil {
		t.Fatal("expected error when no grades function is bound")
	}
}
