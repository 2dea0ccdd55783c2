package booking

import (
	"testing"
	"time"

	"github.com/iliyamo/building-reservation/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func unitRes(portal, floor, door string, day time.Time) model.Reservation {
	return model.Reservation{
		Portal: portal,
		Floor:  floor,
		Door:   door,
		Date:   day,
		Status: model.StatusConfirmed,
		UserID: 1,
	}
}

func TestWeekRange_MondayStart(t *testing.T) {
	cases := []struct {
		name       string
		in         time.Time
		wantMonday time.Time
	}{
		{"monday maps to itself", date(2024, 1, 1), date(2024, 1, 1)},
		{"wednesday maps back", date(2024, 1, 3), date(2024, 1, 1)},
		{"sunday maps to week's monday", date(2024, 1, 7), date(2024, 1, 1)},
		{"next monday starts a new week", date(2024, 1, 8), date(2024, 1, 8)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			monday, sunday := WeekRange(tc.in)
			if !monday.Equal(tc.wantMonday) {
				t.Fatalf("monday = %v, want %v", monday, tc.wantMonday)
			}
			if want := tc.wantMonday.AddDate(0, 0, 6); !sunday.Equal(want) {
				t.Fatalf("sunday = %v, want %v", sunday, want)
			}
		})
	}
}

func TestDateOnly_IgnoresClockAndZone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	// Same calendar day written with different clocks and zones.
	a := time.Date(2024, 1, 3, 23, 45, 0, 0, loc)
	b := time.Date(2024, 1, 3, 0, 1, 0, 0, time.UTC)
	if !SameDate(a, b) {
		t.Fatalf("expected %v and %v to name the same calendar day", a, b)
	}
}

func TestCountWeekly_WeekBoundaries(t *testing.T) {
	// 2024-01-01 is a Monday.  Monday and the following Sunday share a
	// week; the Monday after does not.
	reservations := []model.Reservation{
		unitRes("P1", "2", "A", date(2024, 1, 1)), // Mon
		unitRes("P1", "2", "A", date(2024, 1, 7)), // Sun, same week
		unitRes("P1", "2", "A", date(2024, 1, 8)), // next Mon, next week
	}
	if got := CountWeekly(reservations, "P1", "2", "A", date(2024, 1, 3)); got != 2 {
		t.Fatalf("count for week of Jan 1 = %d, want 2", got)
	}
	if got := CountWeekly(reservations, "P1", "2", "A", date(2024, 1, 8)); got != 1 {
		t.Fatalf("count for week of Jan 8 = %d, want 1", got)
	}
}

func TestCountWeekly_UnitMatching(t *testing.T) {
	week := date(2024, 1, 3)
	cases := []struct {
		name         string
		reservations []model.Reservation
		portal       string
		floor        string
		door         string
		want         int
	}{
		{
			name: "door case folds",
			reservations: []model.Reservation{
				unitRes("P1", "2", "a", date(2024, 1, 1)),
				unitRes("P1", "2", "A", date(2024, 1, 2)),
			},
			portal: "P1", floor: "2", door: "A",
			want: 2,
		},
		{
			name: "portal is case sensitive",
			reservations: []model.Reservation{
				unitRes("p1", "2", "A", date(2024, 1, 1)),
			},
			portal: "P1", floor: "2", door: "A",
			want: 0,
		},
		{
			name: "other units do not count",
			reservations: []model.Reservation{
				unitRes("P1", "3", "A", date(2024, 1, 1)),
				unitRes("P2", "2", "A", date(2024, 1, 2)),
			},
			portal: "P1", floor: "2", door: "A",
			want: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CountWeekly(tc.reservations, tc.portal, tc.floor, tc.door, week)
			if got != tc.want {
				t.Fatalf("CountWeekly = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCountWeekly_QuotaScenario(t *testing.T) {
	// Unit P1/2/A holds Monday and Wednesday of the same week; a Friday
	// request would be its third, which the admission layer must reject.
	reservations := []model.Reservation{
		unitRes("P1", "2", "A", date(2024, 1, 1)),
		unitRes("P1", "2", "A", date(2024, 1, 3)),
	}
	if got := CountWeekly(reservations, "P1", "2", "A", date(2024, 1, 5)); got != WeeklyQuota {
		t.Fatalf("count = %d, want %d", got, WeeklyQuota)
	}
}
