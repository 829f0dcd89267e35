package ui

import (
	"errors"
	"net/http"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/availability"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/console"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
)

// Bookings renders the bookings table. ?sort=column toggles the shared sort and redirects
// back to the bare path, so a reload keeps the direction.
func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	view := h.bookings(rc)
	if col := r.URL.Query().Get("sort"); col != "" {
		view.SortBy(col)
		h.redirect(w, r, "/bookings", nil)
		return
	}
	tbl := view.Render(r.Context())
	if h.signedOutOnUnauthorized(w, r, rc) {
		return
	}
	h.render(w, r, "bookings.html", h.pageData(r, rc, "/bookings", map[string]any{
		"Title": "Bookings",
		"Table": tbl,
	}))
}

func (h *Handler) bookingForm(w http.ResponseWriter, r *http.Request, rc requestContext, status int, carID int64, from string) {
	form, err := h.bookings(rc).NewBookingForm(r.Context(), carID, from)
	if forbidden(w, r, err) {
		return
	}
	if h.signedOutOnUnauthorized(w, r, rc) {
		return
	}
	h.renderStatus(w, r, status, "booking_form.html", h.pageData(r, rc, "/cars", map[string]any{
		"Title": "Book a Car",
		"Form":  form,
	}))
}

// CreateBooking books a car for the signed-in customer. A rejected date range shows
// the form again with both dates cleared.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionCreate, auth.ResourceBookings) {
		return
	}
	carID, err := formID(r, "car_id")
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	err = h.bookings(rc).Create(r.Context(), carID, r.FormValue("from_date"), r.FormValue("to_date"))
	if forbidden(w, r, err) {
		return
	}
	var verr *availability.ValidationError
	switch {
	case errors.As(err, &verr):
		h.bookingForm(w, r, rc, http.StatusUnprocessableEntity, carID, "")
	case err != nil:
		h.back(w, r, rc, "/cars")
	default:
		h.back(w, r, rc, "/bookings")
	}
}

func (h *Handler) bookingEdit(w http.ResponseWriter, r *http.Request, rc requestContext, status int, booking backend.Booking) {
	h.renderStatus(w, r, status, "booking_edit.html", h.pageData(r, rc, "/bookings", map[string]any{
		"Title":   "Edit Booking",
		"Booking": booking,
		"Action":  "/bookings/" + idString(booking.ID),
	}))
}

func (h *Handler) EditBooking(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid booking id")
		return
	}
	booking, err := h.bookings(rc).Get(r.Context(), id)
	if forbidden(w, r, err) {
		return
	}
	if console.IsNotFound(err) {
		rc.state.Notify("Booking not found", console.NoticeNegative)
	}
	if err != nil {
		h.back(w, r, rc, "/bookings")
		return
	}
	h.bookingEdit(w, r, rc, http.StatusOK, booking)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid booking id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionEdit, auth.ResourceBookings) {
		return
	}
	booking, err := bookingFromForm(r)
	if err != nil {
		httperrors.LogError(r, "invalid booking form", err)
		rc.state.Notify("Failed to update booking.", console.NoticeNegative)
		booking.ID = id
		h.bookingEdit(w, r, rc, http.StatusBadRequest, booking)
		return
	}
	if err := h.bookings(rc).Update(r.Context(), id, booking); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/bookings")
}

func (h *Handler) ConfirmDeleteBooking(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid booking id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionDelete, auth.ResourceBookings) {
		return
	}
	h.confirmPage(w, r, rc, "/bookings", "⚠️ Are you sure you want to delete this booking?", "/bookings/"+idString(id))
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid booking id")
		return
	}
	if err := h.bookings(rc).Delete(r.Context(), id, confirmed(r)); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/bookings")
}
