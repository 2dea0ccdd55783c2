package model

import "time"

// StatusConfirmed is the status assigned to every reservation created
// through the admission flow.  Cancellation removes the row outright, so
// no other status value is reachable today; the column exists so future
// states (e.g. PENDING) can be added without a schema migration.
const StatusConfirmed = "CONFIRMED"

// Reservation records that an apartment unit holds the shared resource
// (the building laundry slot) for one calendar date.  A date can be held
// by at most one unit building-wide, and a unit may hold at most two
// dates within the same Monday-starting week.
//
// Fields:
//  ID        – primary key identifier assigned by the store.
//  Portal    – building entrance identifier (compared verbatim).
//  Floor     – floor identifier (compared verbatim).
//  Door      – door label; real-world labels mix casing, so door
//              comparison is always case-insensitive.
//  Date      – reserved calendar date, stored as midnight UTC with no
//              time-of-day meaning.
//  Status    – reservation state; always CONFIRMED (see StatusConfirmed).
//  UserID    – user who created the reservation; immutable, and the only
//              user allowed to cancel it.
//  CreatedAt – server-assigned creation timestamp.
type Reservation struct {
	ID        uint64    // reservations.id
	Portal    string    // reservations.portal
	Floor     string    // reservations.floor
	Door      string    // reservations.door
	Date      time.Time // reservations.reserved_date (DATE column)
	Status    string    // reservations.status
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
}
