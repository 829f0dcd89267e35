package ui

import (
	"net/http"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/console"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
)

// Cars renders the car list. ?sort=name|type sorts the retained snapshot and redirects
// back to the bare path, so a reload does not sort again.
func (h *Handler) Cars(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	view := h.cars(rc)
	if key := r.URL.Query().Get("sort"); key != "" {
		view.SortBy(key)
		h.redirect(w, r, "/cars", nil)
		return
	}
	page := view.Render(r.Context())
	if h.signedOutOnUnauthorized(w, r, rc) {
		return
	}
	h.render(w, r, "cars.html", h.pageData(r, rc, "/cars", map[string]any{
		"Title": "Cars",
		"Page":  page,
	}))
}

func (h *Handler) carForm(w http.ResponseWriter, r *http.Request, rc requestContext, status int, car backend.Car, action string) {
	h.renderStatus(w, r, status, "car_form.html", h.pageData(r, rc, "/cars", map[string]any{
		"Title":  "Car",
		"Car":    car,
		"Edit":   car.ID != 0,
		"Action": action,
	}))
}

func (h *Handler) NewCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionCreate, auth.ResourceCars) {
		return
	}
	h.carForm(w, r, rc, http.StatusOK, backend.Car{}, "/cars")
}

func (h *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionCreate, auth.ResourceCars) {
		return
	}
	car, err := carFromForm(r)
	if err != nil {
		httperrors.LogError(r, "invalid car form", err)
		rc.state.Notify("Failed to create car", console.NoticeNegative)
		h.carForm(w, r, rc, http.StatusBadRequest, car, "/cars")
		return
	}
	if err := h.cars(rc).Create(r.Context(), car); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/cars")
}

func (h *Handler) EditCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	car, err := h.cars(rc).Get(r.Context(), id)
	if forbidden(w, r, err) {
		return
	}
	if err != nil {
		h.back(w, r, rc, "/cars")
		return
	}
	h.carForm(w, r, rc, http.StatusOK, *car, "/cars/"+idString(id))
}

func (h *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionEdit, auth.ResourceCars) {
		return
	}
	car, err := carFromForm(r)
	if err != nil {
		httperrors.LogError(r, "invalid car form", err)
		rc.state.Notify("Failed to update car", console.NoticeNegative)
		car.ID = id
		h.carForm(w, r, rc, http.StatusBadRequest, car, "/cars/"+idString(id))
		return
	}
	if err := h.cars(rc).Update(r.Context(), id, car); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/cars")
}

func (h *Handler) ConfirmDeleteCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionDelete, auth.ResourceCars) {
		return
	}
	h.confirmPage(w, r, rc, "/cars", "⚠️ Are you sure you want to delete this car?", "/cars/"+idString(id))
}

func (h *Handler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	if err := h.cars(rc).Delete(r.Context(), id, confirmed(r)); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/cars")
}

// BookCar shows the booking form for one car. ?from= moves the earliest return day.
func (h *Handler) BookCar(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid car id")
		return
	}
	h.bookingForm(w, r, rc, http.StatusOK, id, r.URL.Query().Get("from"))
}
