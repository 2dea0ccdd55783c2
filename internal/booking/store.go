package booking

import (
	"context"

	"github.com/iliyamo/building-reservation/internal/model"
)

// Store is the durable source of truth for reservations.  The production
// implementation is repository.ReservationRepo backed by MySQL; tests use
// an in-memory substitute.
//
// Contract:
//   - Create assigns ID and CreatedAt and returns the stored record.  A
//     store enforcing a uniqueness constraint on the date must return
//     ErrDateAlreadyReserved when the date is taken and may return
//     ErrWeeklyQuotaExceeded when its own commit-time re-validation of the
//     weekly quota fails.  Both are passed through to callers unchanged.
//   - Delete returns ErrNotFound when no reservation with the given ID
//     exists.
//   - Any other failure is surfaced as-is and wrapped by the engine into
//     a StoreError.
type Store interface {
	ListAll(ctx context.Context) ([]model.Reservation, error)
	Create(ctx context.Context, res model.Reservation) (model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}
