package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/building-reservation/internal/booking"
	"github.com/iliyamo/building-reservation/internal/model"
)

// ReservationRepo is the MySQL-backed reservation store.  The table keeps
// the engine's invariants enforceable at commit time even against writers
// in other processes:
//
//	CREATE TABLE reservations (
//	  id            BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	  portal        VARCHAR(16)  NOT NULL,
//	  floor         VARCHAR(16)  NOT NULL,
//	  door          VARCHAR(16)  NOT NULL,
//	  reserved_date DATE         NOT NULL,
//	  status        ENUM('CONFIRMED') NOT NULL DEFAULT 'CONFIRMED',
//	  user_id       BIGINT UNSIGNED NOT NULL,
//	  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	  UNIQUE KEY uq_reserved_date (reserved_date),
//	  KEY idx_unit_date (portal, floor, door, reserved_date)
//	) CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_ai_ci;
//
// The unique key on reserved_date backs the one-reservation-per-date rule.
// Unit matching splits by column: portal and floor identify distinct units
// even when they differ only by letter case, so queries compare them byte
// for byte with BINARY; door alone folds case, which the table's
// case-insensitive collation gives us.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that manage transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, portal, floor, door, reserved_date, status, user_id, created_at`

// weeklyCountQuery locks and counts the unit's rows in a Monday..Sunday
// window.  BINARY on portal and floor keeps those comparisons exact under
// the table's case-insensitive collation; door stays on the collation so
// it folds case like the engine does.
const weeklyCountQuery = `SELECT COUNT(*) FROM reservations
                WHERE BINARY portal = ? AND BINARY floor = ? AND door = ?
                  AND reserved_date BETWEEN ? AND ?
                FOR UPDATE`

// ListAll returns every reservation.  Ordering by date keeps output
// deterministic; callers attach no meaning to it.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations ORDER BY reserved_date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.Portal, &res.Floor, &res.Door,
			&res.Date, &res.Status, &res.UserID, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a reservation and returns the stored row with ID and
// CreatedAt populated.  The whole check-then-insert runs in one
// transaction: the unit's weekly rows are locked and re-counted so a
// concurrent writer in another connection cannot push the unit past its
// quota, and the unique index on reserved_date rejects a duplicate date at
// insert.  Violations come back as booking.ErrWeeklyQuotaExceeded and
// booking.ErrDateAlreadyReserved.
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	monday, sunday := booking.WeekRange(res.Date)
	var weekly int
	if err := tx.QueryRowContext(ctx, weeklyCountQuery,
		res.Portal, res.Floor, res.Door, monday, sunday).Scan(&weekly); err != nil {
		return model.Reservation{}, err
	}
	if weekly >= booking.WeeklyQuota {
		return model.Reservation{}, booking.ErrWeeklyQuotaExceeded
	}

	const ins = `INSERT INTO reservations (portal, floor, door, reserved_date, status, user_id)
	             VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		res.Portal, res.Floor, res.Door, booking.DateOnly(res.Date), res.Status, res.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Reservation{}, booking.ErrDateAlreadyReserved
		}
		return model.Reservation{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}

	// Query the row back so server-assigned defaults come through.
	const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	var stored model.Reservation
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&stored.ID, &stored.Portal, &stored.Floor,
		&stored.Door, &stored.Date, &stored.Status, &stored.UserID, &stored.CreatedAt); err != nil {
		return model.Reservation{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	committed = true
	return stored, nil
}

// Delete removes a reservation permanently.  Returns booking.ErrNotFound
// when no row with the given ID exists.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error code 1062), which the reservations table raises when the unique
// index on reserved_date is violated.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
