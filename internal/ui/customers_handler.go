package ui

import (
	"net/http"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/console"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
)

// Customers renders customer management. Only administrators get past the policy check.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionView, auth.ResourceCustomers) {
		return
	}
	view := h.customers(rc)
	if col := r.URL.Query().Get("sort"); col != "" {
		view.SortBy(col)
		h.redirect(w, r, "/customers", nil)
		return
	}
	tbl := view.Render(r.Context())
	if h.signedOutOnUnauthorized(w, r, rc) {
		return
	}
	h.render(w, r, "customers.html", h.pageData(r, rc, "/customers", map[string]any{
		"Title":     "Customer Management",
		"Table":     tbl,
		"CanCreate": rc.policy.Can(auth.ActionCreate, auth.ResourceCustomers),
	}))
}

func (h *Handler) customerForm(w http.ResponseWriter, r *http.Request, rc requestContext, status int, c backend.Customer, action string) {
	c.Password = ""
	h.renderStatus(w, r, status, "customer_form.html", h.pageData(r, rc, "/customers", map[string]any{
		"Title":    "Customer",
		"Customer": c,
		"Edit":     c.ID != 0,
		"Action":   action,
	}))
}

func (h *Handler) NewCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionCreate, auth.ResourceCustomers) {
		return
	}
	h.customerForm(w, r, rc, http.StatusOK, backend.Customer{}, "/customers")
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	if !allow(w, r, rc.policy, auth.ActionCreate, auth.ResourceCustomers) {
		return
	}
	c, err := customerFromForm(r, false)
	if err != nil {
		httperrors.LogError(r, "invalid customer form", err)
		rc.state.Notify("Failed to create customer", console.NoticeNegative)
		h.customerForm(w, r, rc, http.StatusBadRequest, c, "/customers")
		return
	}
	if err := h.customers(rc).Create(r.Context(), c); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/customers")
}

func (h *Handler) EditCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid customer id")
		return
	}
	c, err := h.customers(rc).Get(r.Context(), id)
	if forbidden(w, r, err) {
		return
	}
	if err != nil {
		h.back(w, r, rc, "/customers")
		return
	}
	h.customerForm(w, r, rc, http.StatusOK, *c, "/customers/"+idString(id))
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid customer id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionEdit, auth.ResourceCustomers) {
		return
	}
	c, err := customerFromForm(r, true)
	if err != nil {
		httperrors.LogError(r, "invalid customer form", err)
		rc.state.Notify("Failed to update customer", console.NoticeNegative)
		c.ID = id
		h.customerForm(w, r, rc, http.StatusBadRequest, c, "/customers/"+idString(id))
		return
	}
	if err := h.customers(rc).Update(r.Context(), id, c); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/customers")
}

func (h *Handler) ConfirmDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid customer id")
		return
	}
	if !allow(w, r, rc.policy, auth.ActionDelete, auth.ResourceCustomers) {
		return
	}
	h.confirmPage(w, r, rc, "/customers", "⚠️ Are you sure you want to delete this customer?", "/customers/"+idString(id))
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	rc := h.requestContext(r)
	id, err := idParam(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid customer id")
		return
	}
	if err := h.customers(rc).Delete(r.Context(), id, confirmed(r)); forbidden(w, r, err) {
		return
	}
	h.back(w, r, rc, "/customers")
}
