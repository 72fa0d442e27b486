package server

import (
	"testing"

	"mojejecna/site"
)

func TestNewGrades(t *testing.T) {
	subjects := []site.SubjectGrades{
		{
			Subject: "Matematika",
			Splits: []site.Split{
				{Label: "Teorie", Grades: []site.Grade{
					{Value: 1, Key: "Matematika|15.3.2024|1|test"},
					{Value: 3, Key: "Matematika|20.3.2024|3|rysy"},
				}},
			},
		},
		{
			Subject: "Fyzika",
			Splits: []site.Split{
				{Label: "no grouping", Grades: []site.Grade{
					{Value: 2, Key: "Fyzika|18.3.2024|2|"},
					{Value: 2, Key: ""}, // keyless entries are never reported
				}},
			},
		},
	}

	seen := map[string]bool{"Matematika|15.3.2024|1|test": true}
	fresh := newGrades(seen, subjects)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 new grades, got %d", len(fresh))
	}
	if fresh[0].Key != "Matematika|20.3.2024|3|rysy" || fresh[1].Key != "Fyzika|18.3.2024|2|" {
		t.Errorf("unexpected new grades: %+v", fresh)
	}

	// Once everything is seen, nothing is new.
	for _, grade := range fresh {
		seen[grade.Key] = true
	}
	if again := newGrades(seen, subjects); len(again) != 0 {
		t.Errorf("expected no new grades, got %+v", again)
	}
}

func TestNewGradesEmptySeen(t *testing.T) {
	subjects := []site.SubjectGrades{
		{Subject: "Dějepis", Splits: []site.Split{
			{Grades: []site.Grade{{Value: 4, Key: "Dějepis|1.3.2024|4|"}}},
		}},
	}
	fresh := newGrades(nil, subjects)
	if len(fresh) != 1 {
		t.Fatalf("first fetch should report everything, got %d", len(fresh))
	}
}
