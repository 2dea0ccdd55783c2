package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/building-reservation/internal/model"
)

// Service is the sole authority for mutating the reservation set.  Every
// create and cancel passes through it, which is what keeps the three
// invariants:
//
//   - one reservation per date, building-wide;
//   - at most WeeklyQuota reservations per unit per Monday-starting week;
//   - only the creating user may cancel.
//
// The check-then-write sequence is serialized behind a mutex so two
// concurrent requests in this process cannot both pass their checks before
// either commits.  Writers in other processes are stopped by the store's
// own commit-time validation (unique date index plus an in-transaction
// weekly re-count in the MySQL implementation).
type Service struct {
	store Store
	cache *Cache

	// mu guards the whole admission sequence: cache reload, invariant
	// checks and the store write.
	mu sync.Mutex
}

// NewService builds an admission service with a fresh cache over the
// given store.
func NewService(store Store) *Service {
	return &Service{store: store, cache: NewCache(store)}
}

// Refresh reloads the cache from the store.  Called once at startup to
// populate the initial snapshot; the service refreshes on its own after
// every successful mutation.
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Refresh(ctx)
}

// List returns the current cache snapshot.  It does not touch the store.
func (s *Service) List() []model.Reservation {
	return s.cache.All()
}

// WeeklyCount returns the number of reservations the unit holds in the
// week containing date, computed over the current cache snapshot.
func (s *Service) WeeklyCount(portal, floor, door string, date time.Time) int {
	return CountWeekly(s.cache.All(), portal, floor, door, date)
}

// Create admits and persists a reservation for the given unit and date on
// behalf of userID.  Checks run in a fixed order: authentication, date
// uniqueness, weekly quota.  Only when all pass is the record written, and
// the cache is refreshed afterwards so subsequent checks see it.  Failures
// are terminal for this attempt; the caller may retry, and a retry re-runs
// the full sequence (a retry of an already-committed create fails with
// ErrDateAlreadyReserved rather than duplicating the row).
func (s *Service) Create(ctx context.Context, userID uint64, portal, floor, door string, date time.Time) (model.Reservation, error) {
	if userID == 0 {
		return model.Reservation{}, ErrUnauthenticated
	}
	portal = strings.TrimSpace(portal)
	floor = strings.TrimSpace(floor)
	door = strings.TrimSpace(door)
	if portal == "" || floor == "" || door == "" || date.IsZero() {
		return model.Reservation{}, ErrInvalidInput
	}
	day := DateOnly(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Admit against the freshest view the store can give us.
	if err := s.cache.Refresh(ctx); err != nil {
		return model.Reservation{}, err
	}
	current := s.cache.All()

	for _, r := range current {
		if SameDate(r.Date, day) {
			return model.Reservation{}, ErrDateAlreadyReserved
		}
	}
	if CountWeekly(current, portal, floor, door, day) >= WeeklyQuota {
		return model.Reservation{}, ErrWeeklyQuotaExceeded
	}

	created, err := s.store.Create(ctx, model.Reservation{
		Portal: portal,
		Floor:  floor,
		Door:   door,
		Date:   day,
		Status: model.StatusConfirmed,
		UserID: userID,
	})
	if err != nil {
		// A concurrent writer in another process may have taken the date
		// or filled the quota between our check and the commit; the store
		// reports that with the same sentinels we use here.
		if errors.Is(err, ErrDateAlreadyReserved) || errors.Is(err, ErrWeeklyQuotaExceeded) {
			return model.Reservation{}, err
		}
		return model.Reservation{}, storeError("create", err)
	}

	// The write committed; a failed refresh here only delays visibility
	// until the next reload.
	_ = s.cache.Refresh(ctx)
	return created, nil
}

// Cancel deletes the reservation with the given ID on behalf of userID and
// returns the record as it stood before deletion.  Only the creating user
// may cancel.  Deletion is unconditional once authorized: the record is
// removed permanently, with no soft-delete marker (the audit trail lives in
// the published events, which is why callers get the deleted record back).
func (s *Service) Cancel(ctx context.Context, userID uint64, id uint64) (model.Reservation, error) {
	if userID == 0 {
		return model.Reservation{}, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Refresh(ctx); err != nil {
		return model.Reservation{}, err
	}

	var target *model.Reservation
	for _, r := range s.cache.All() {
		if r.ID == id {
			target = &r
			break
		}
	}
	if target == nil {
		return model.Reservation{}, ErrNotFound
	}
	if target.UserID != userID {
		return model.Reservation{}, ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, storeError("delete", err)
	}

	_ = s.cache.Refresh(ctx) // best effort; deletion already committed
	return *target, nil
}
