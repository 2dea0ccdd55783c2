// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published to the reservation.audit queue.
const (
	EventReservationConfirmed = "confirmed"
	EventReservationCancelled = "cancelled"
)

// ReservationEvent is published after a reservation is committed or
// cancelled.  Since cancellation deletes the row, the stream of these
// events is the only durable history of past reservations; the consumer
// appends them to an audit log.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationEvent struct {
	Kind          string `json:"kind"` // "confirmed" or "cancelled"
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	Portal        string `json:"portal"`
	Floor         string `json:"floor"`
	Door          string `json:"door"`
	Date          string `json:"date"`        // reserved calendar date, "2006-01-02"
	OccurredAt    string `json:"occurred_at"` // RFC3339 UTC
}
