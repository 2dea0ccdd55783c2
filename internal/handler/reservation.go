package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/building-reservation/internal/booking"
	"github.com/iliyamo/building-reservation/internal/model"
	"github.com/iliyamo/building-reservation/internal/queue"
	queue_publisher "github.com/iliyamo/building-reservation/internal/service"
)

// dateLayout is the wire format for calendar dates.  Dates carry no time
// zone; "2026-03-02" names the same laundry day for every client.
const dateLayout = "2006-01-02"

// ReservationHandler exposes the admission engine over HTTP.  All methods
// assume JWT authentication and role validation already ran in middleware;
// the acting user is re-extracted per request and passed explicitly into
// every mutating call.
type ReservationHandler struct {
	Booking *booking.Service
}

// NewReservationHandler constructs a ReservationHandler.  The booking
// service must be non-nil.
func NewReservationHandler(svc *booking.Service) *ReservationHandler {
	if svc == nil {
		panic("nil booking service passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: svc}
}

// ----- DTOs -----

type createReservationReq struct {
	Portal string `json:"portal"`
	Floor  string `json:"floor"`
	Door   string `json:"door"`
	Date   string `json:"date"` // "2006-01-02"
}

type reservationResp struct {
	ID        uint64 `json:"id"`
	Portal    string `json:"portal"`
	Floor     string `json:"floor"`
	Door      string `json:"door"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	UserID    uint64 `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:        r.ID,
		Portal:    r.Portal,
		Floor:     r.Floor,
		Door:      r.Door,
		Date:      r.Date.Format(dateLayout),
		Status:    r.Status,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/reservations.  The body must carry the unit
// address and the requested date.  On admission the reservation is
// returned with 201; rejections map onto 400/401/409 and store faults
// onto 500.  A confirmation event is published after commit; publish
// failures are ignored so the booking itself never rolls back over a
// broker outage.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as " + dateLayout})
	}

	ctx := c.Request().Context()
	res, err := h.Booking.Create(ctx, userID, req.Portal, req.Floor, req.Door, date)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		case errors.Is(err, booking.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "portal, floor, door and date are required"})
		case errors.Is(err, booking.ErrDateAlreadyReserved):
			return c.JSON(http.StatusConflict, echo.Map{"error": "date already reserved"})
		case errors.Is(err, booking.ErrWeeklyQuotaExceeded):
			return c.JSON(http.StatusConflict, echo.Map{"error": "weekly quota exceeded"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
		}
	}

	_ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
		Kind:          queue.EventReservationConfirmed,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Portal:        res.Portal,
		Floor:         res.Floor,
		Door:          res.Door,
		Date:          res.Date.Format(dateLayout),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationResp(res)})
}

// Delete handles DELETE /v1/reservations/:id.  Only the creating user may
// cancel; others get 403.  Returns 204 on success and 404 when the target
// does not exist.
func (h *ReservationHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	// Cancel hands back the deleted record so the event can name the unit.
	prior, err := h.Booking.Cancel(ctx, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		case errors.Is(err, booking.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
		}
	}

	_ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
		Kind:          queue.EventReservationCancelled,
		ReservationID: id,
		UserID:        userID,
		Portal:        prior.Portal,
		Floor:         prior.Floor,
		Door:          prior.Door,
		Date:          prior.Date.Format(dateLayout),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/reservations.  It serves the current cache
// snapshot; no store round trip per request.
func (h *ReservationHandler) List(c echo.Context) error {
	items := h.Booking.List()
	out := make([]reservationResp, 0, len(items))
	for _, r := range items {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// WeeklyCount handles GET /v1/reservations/weekly-count.  Query params:
// portal, floor, door, date.  Returns how many reservations the unit
// holds in the Monday-starting week containing the date.
func (h *ReservationHandler) WeeklyCount(c echo.Context) error {
	portal := c.QueryParam("portal")
	floor := c.QueryParam("floor")
	door := c.QueryParam("door")
	if portal == "" || floor == "" || door == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "portal, floor and door are required"})
	}
	date, err := time.Parse(dateLayout, c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as " + dateLayout})
	}
	count := h.Booking.WeeklyCount(portal, floor, door, date)
	return c.JSON(http.StatusOK, echo.Map{"count": count, "quota": booking.WeeklyQuota})
}
