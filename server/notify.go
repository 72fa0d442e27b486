package server

import (
	"context"
	"net/http"

	"mojejecna/site"
)

// newGrades returns the grades whose identity keys are not in seen,
// preserving document order. Pure; the Redis plumbing lives in the
// callers.
func newGrades(seen map[string]bool, subjects []site.SubjectGrades) []site.Grade {
	var fresh []site.Grade
	for _, subject := range subjects {
		for _, split := range subject.Splits {
			for _, grade := range split.Grades {
				if grade.Key == "" || seen[grade.Key] {
					continue
				}
				fresh = append(fresh, grade)
			}
		}
	}
	return fresh
}

// seenGrades loads the set of grade keys the user has already been shown.
func (db *authDB) seenGrades(username string) (map[string]bool, error) {
	keys, err := db.client.SMembers(context.Background(), "grades:"+username).Result()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	return seen, nil
}

// markSeen records grade keys so they are reported as new only once.
func (db *authDB) markSeen(username string, grades []site.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	keys := make([]interface{}, 0, len(grades))
	for _, grade := range grades {
		keys = append(keys, grade.Key)
	}
	return db.client.SAdd(context.Background(), "grades:"+username, keys...).Err()
}

// newGradesHandler returns only the grades the user has not seen before,
// then marks them seen. The app polls this for notification delivery.
func newGradesHandler(w http.ResponseWriter, r *http.Request) {
	req := resolve(w, r)
	if req == nil {
		return
	}
	defer req.done()

	subjects, err := mux.Grades(req.user, req.sessions, site.Term{})
	if err != nil {
		portalError(w, err)
		return
	}
	seen, err := db.seenGrades(req.user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "grade store unavailable")
		return
	}
	fresh := newGrades(seen, subjects)
	err = db.markSeen(req.user.Username, fresh)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "grade store unavailable")
		return
	}
	if fresh == nil {
		fresh = []site.Grade{}
	}
	writeJSON(w, fresh)
}
