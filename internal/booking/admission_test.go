package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/building-reservation/internal/model"
)

// memStore is an in-memory Store.  Like the MySQL implementation it
// enforces date uniqueness at commit time, so it also stands in for a
// concurrent writer racing the admission checks.  Error fields inject
// failures per operation.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]model.Reservation

	listErr   error
	createErr error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uint64]model.Reservation)}
}

func (s *memStore) ListAll(ctx context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]model.Reservation, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) Create(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return model.Reservation{}, s.createErr
	}
	for _, r := range s.items {
		if SameDate(r.Date, res.Date) {
			return model.Reservation{}, ErrDateAlreadyReserved
		}
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	s.items[res.ID] = res
	return res, nil
}

func (s *memStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func mustCreate(t *testing.T, svc *Service, userID uint64, portal, floor, door string, day time.Time) model.Reservation {
	t.Helper()
	res, err := svc.Create(context.Background(), userID, portal, floor, door, day)
	if err != nil {
		t.Fatalf("Create(%s/%s/%s %v) error: %v", portal, floor, door, day, err)
	}
	return res
}

func TestCreate_RejectsMissingUser(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Create(context.Background(), 0, "P1", "2", "A", date(2024, 2, 10))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestCreate_RejectsMissingUnitFields(t *testing.T) {
	svc := NewService(newMemStore())
	cases := []struct {
		name                string
		portal, floor, door string
		day                 time.Time
	}{
		{"empty portal", "", "2", "A", date(2024, 2, 10)},
		{"empty floor", "P1", "", "A", date(2024, 2, 10)},
		{"blank door", "P1", "2", "   ", date(2024, 2, 10)},
		{"zero date", "P1", "2", "A", time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tc.portal, tc.floor, tc.door, tc.day)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreate_DateUniqueness(t *testing.T) {
	// Scenario: user X books a free date, then user Y asks for the same
	// date and is turned away regardless of unit.
	svc := NewService(newMemStore())
	day := date(2024, 2, 10)

	created := mustCreate(t, svc, 1, "P1", "2", "A", day)
	if created.Status != model.StatusConfirmed {
		t.Fatalf("status = %q, want %q", created.Status, model.StatusConfirmed)
	}
	if created.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}

	_, err := svc.Create(context.Background(), 2, "P3", "1", "B", day)
	if !errors.Is(err, ErrDateAlreadyReserved) {
		t.Fatalf("error = %v, want ErrDateAlreadyReserved", err)
	}

	// Retry by the original creator is rejected the same way, never a
	// silent duplicate.
	_, err = svc.Create(context.Background(), 1, "P1", "2", "A", day)
	if !errors.Is(err, ErrDateAlreadyReserved) {
		t.Fatalf("retry error = %v, want ErrDateAlreadyReserved", err)
	}
	if got := len(svc.List()); got != 1 {
		t.Fatalf("reservation count = %d, want 1", got)
	}
}

func TestCreate_WeeklyQuota(t *testing.T) {
	// Scenario: P1/2/A holds Monday 2024-01-01 and Wednesday 2024-01-03;
	// Friday the 5th would be its third reservation that week.
	svc := NewService(newMemStore())
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 1))
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 3))

	_, err := svc.Create(context.Background(), 1, "P1", "2", "A", date(2024, 1, 5))
	if !errors.Is(err, ErrWeeklyQuotaExceeded) {
		t.Fatalf("error = %v, want ErrWeeklyQuotaExceeded", err)
	}

	// The next Monday opens a new week.
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 8))
}

func TestCreate_WeeklyQuotaFoldsDoorCase(t *testing.T) {
	// "a" and "A" are the same door, so their reservations share a quota.
	svc := NewService(newMemStore())
	mustCreate(t, svc, 1, "P1", "2", "a", date(2024, 1, 1))
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 3))

	_, err := svc.Create(context.Background(), 1, "P1", "2", "a", date(2024, 1, 5))
	if !errors.Is(err, ErrWeeklyQuotaExceeded) {
		t.Fatalf("error = %v, want ErrWeeklyQuotaExceeded", err)
	}
}

func TestCreate_QuotaIsPerUnit(t *testing.T) {
	// Another unit using dates in the same week does not consume P1/2/A's
	// quota.
	svc := NewService(newMemStore())
	mustCreate(t, svc, 2, "P2", "1", "B", date(2024, 1, 1))
	mustCreate(t, svc, 2, "P2", "1", "B", date(2024, 1, 2))

	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 3))
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 4))
}

func TestCreate_NormalizesDateToCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	svc := NewService(newMemStore())
	created := mustCreate(t, svc, 1, "P1", "2", "A", time.Date(2024, 2, 10, 22, 30, 0, 0, loc))
	if want := date(2024, 2, 10); !created.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", created.Date, want)
	}

	// Any clock time on the same day collides with it.
	_, err = svc.Create(context.Background(), 2, "P2", "1", "B", time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrDateAlreadyReserved) {
		t.Fatalf("error = %v, want ErrDateAlreadyReserved", err)
	}
}

func TestCreate_StoreFailureIsTerminal(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	cause := errors.New("connection reset")
	store.createErr = cause
	_, err := svc.Create(context.Background(), 1, "P1", "2", "A", date(2024, 2, 10))
	var sErr *StoreError
	if !errors.As(err, &sErr) {
		t.Fatalf("error type = %T, want *StoreError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}

	// A manual retry after the fault clears re-runs the full sequence and
	// succeeds.
	store.createErr = nil
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 2, 10))
}

func TestCreate_PassesThroughStoreConstraintRejections(t *testing.T) {
	// A writer in another process can take the date between our check and
	// the commit; the store's constraint violation must surface as the
	// same sentinel, not as a StoreError.
	store := newMemStore()
	svc := NewService(store)
	store.createErr = ErrDateAlreadyReserved
	_, err := svc.Create(context.Background(), 1, "P1", "2", "A", date(2024, 2, 10))
	if !errors.Is(err, ErrDateAlreadyReserved) {
		t.Fatalf("error = %v, want ErrDateAlreadyReserved", err)
	}
	var sErr *StoreError
	if errors.As(err, &sErr) {
		t.Fatalf("constraint rejection must not be wrapped as StoreError")
	}
}

func TestCancel_AuthorizationMatrix(t *testing.T) {
	// Scenario: user 1 books, user 2 may not cancel it, user 1 may; the
	// weekly count drops once the cancel lands.
	store := newMemStore()
	svc := NewService(store)
	created := mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 1))

	if _, err := svc.Cancel(context.Background(), 0, created.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous cancel error = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.Cancel(context.Background(), 2, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner cancel error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Cancel(context.Background(), 1, created.ID+99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id cancel error = %v, want ErrNotFound", err)
	}
	// Failed attempts leave the store unchanged.
	if got := len(svc.List()); got != 1 {
		t.Fatalf("reservation count after rejected cancels = %d, want 1", got)
	}
	if got := svc.WeeklyCount("P1", "2", "A", date(2024, 1, 1)); got != 1 {
		t.Fatalf("weekly count = %d, want 1", got)
	}

	deleted, err := svc.Cancel(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("owner cancel error: %v", err)
	}
	if deleted.ID != created.ID || deleted.Portal != "P1" || deleted.Door != "A" {
		t.Fatalf("deleted record = %+v, want the cancelled reservation back", deleted)
	}
	if got := svc.WeeklyCount("P1", "2", "A", date(2024, 1, 1)); got != 0 {
		t.Fatalf("weekly count after cancel = %d, want 0", got)
	}

	// The date is free again.
	mustCreate(t, svc, 2, "P2", "1", "B", date(2024, 1, 1))
}

func TestCancel_ThenCreateSameWeekSucceeds(t *testing.T) {
	svc := NewService(newMemStore())
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 1))
	second := mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 3))

	if _, err := svc.Cancel(context.Background(), 1, second.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	// Quota slot freed; a new date in the same week is admitted.
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 5))
}

func TestCancel_ReturnsRecordUnknownToSnapshot(t *testing.T) {
	// A row written by another process is not in this service's snapshot
	// yet.  Cancel reloads before checking, so it must still hand back the
	// full record for the cancellation event to name the unit and date.
	store := newMemStore()
	svc := NewService(store)

	seeded, err := store.Create(context.Background(), unitRes("P3", "4", "C", date(2024, 3, 11)))
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	deleted, err := svc.Cancel(context.Background(), 1, seeded.ID)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if deleted.Portal != "P3" || deleted.Floor != "4" || deleted.Door != "C" {
		t.Fatalf("deleted record = %+v, want the seeded unit", deleted)
	}
	if !SameDate(deleted.Date, date(2024, 3, 11)) {
		t.Fatalf("deleted date = %v, want 2024-03-11", deleted.Date)
	}
}

func TestCreate_ConcurrentSameDate(t *testing.T) {
	// Two concurrent creates for one date must not both commit.
	svc := NewService(newMemStore())
	day := date(2024, 2, 10)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), uint64(i+1), "P1", "2", "A", day)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDateAlreadyReserved) || errors.Is(err, ErrWeeklyQuotaExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful creates = %d, want exactly 1", ok)
	}
	if got := len(svc.List()); got != 1 {
		t.Fatalf("reservation count = %d, want 1", got)
	}
}

func TestCreate_ConcurrentQuota(t *testing.T) {
	// Five goroutines book distinct dates of one week for the same unit;
	// only two may land.
	svc := NewService(newMemStore())

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), 1, "P1", "2", "A", date(2024, 1, 1+i))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrWeeklyQuotaExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != WeeklyQuota {
		t.Fatalf("successful creates = %d, want %d", ok, WeeklyQuota)
	}
}

func TestWeeklyCount_ReadsCacheSnapshot(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	mustCreate(t, svc, 1, "P1", "2", "A", date(2024, 1, 1))

	// A failure on the store does not affect reads served from the cache.
	store.listErr = errors.New("store down")
	if got := svc.WeeklyCount("P1", "2", "A", date(2024, 1, 4)); got != 1 {
		t.Fatalf("weekly count = %d, want 1", got)
	}
	if got := len(svc.List()); got != 1 {
		t.Fatalf("list length = %d, want 1", got)
	}
}
