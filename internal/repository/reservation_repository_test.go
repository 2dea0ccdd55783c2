package repository

import (
	"strings"
	"testing"
)

// The reservations table carries a case-insensitive collation so door
// comparisons fold case in SQL.  Portal and floor identify distinct units
// even when they differ only by case, so the commit-time weekly re-count
// has to opt them out of the collation explicitly; otherwise two distinct
// units would share a quota at the store layer.
func TestWeeklyCountQuery_UnitMatching(t *testing.T) {
	for _, col := range []string{"portal", "floor"} {
		if !strings.Contains(weeklyCountQuery, "BINARY "+col+" = ?") {
			t.Fatalf("weekly count must compare %s byte for byte, got:\n%s", col, weeklyCountQuery)
		}
	}
	if strings.Contains(weeklyCountQuery, "BINARY door") {
		t.Fatalf("door must stay on the collation's case folding, got:\n%s", weeklyCountQuery)
	}
	if !strings.Contains(weeklyCountQuery, "FOR UPDATE") {
		t.Fatalf("weekly count must lock the counted rows, got:\n%s", weeklyCountQuery)
	}
}
