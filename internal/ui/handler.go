package ui

import (
	"html/template"
	"net/http"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/config"
	"github.com/jw6ventures/carrental-console/internal/console"
)

// Handler serves the console's server-rendered pages.
type Handler struct {
	cfg         *config.Config
	authService *auth.Service
	registry    *console.Registry
	templates   map[string]*template.Template
}

func NewHandler(cfg *config.Config, authService *auth.Service, registry *console.Registry) *Handler {
	return &Handler{cfg: cfg, authService: authService, registry: registry, templates: templates}
}

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// navigation is rebuilt from the policy on every render, so each entry appears at most once.
func navigation(policy auth.Policy, active string) []NavItem {
	var items []NavItem
	add := func(label, url string, resource auth.Resource) {
		if policy.Can(auth.ActionView, resource) {
			items = append(items, NavItem{Label: label, URL: url, Active: url == active})
		}
	}
	add("Cars", "/cars", auth.ResourceCars)
	add("Bookings", "/bookings", auth.ResourceBookings)
	add("Customers", "/customers", auth.ResourceCustomers)
	return items
}

// Home sends signed-in users to the default view.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/cars", http.StatusFound)
}

// requestContext bundles what every console page handler needs.
type requestContext struct {
	session *auth.Session
	policy  auth.Policy
	state   *console.State
}

func (h *Handler) requestContext(r *http.Request) requestContext {
	sess, _ := auth.SessionFromContext(r.Context())
	rc := requestContext{session: sess, policy: auth.PolicyFromContext(r.Context())}
	if sess != nil {
		rc.state = h.registry.For(sess.ID)
	}
	return rc
}

func (h *Handler) cars(rc requestContext) *console.CarsView {
	return console.NewCarsView(h.authService.Client(rc.session), rc.policy, rc.state)
}

func (h *Handler) bookings(rc requestContext) *console.BookingsView {
	return console.NewBookingsView(h.authService.Client(rc.session), rc.policy, rc.session.User.UserID, rc.state)
}

func (h *Handler) customers(rc requestContext) *console.CustomersView {
	return console.NewCustomersView(h.authService.Client(rc.session), rc.policy, rc.state)
}

// signedOutOnUnauthorized ends the session when the backend rejected the stored credential
// and the console is configured to do so. It reports whether the response was written.
func (h *Handler) signedOutOnUnauthorized(w http.ResponseWriter, r *http.Request, rc requestContext) bool {
	if rc.state == nil || !rc.state.Unauthorized() || !h.cfg.UI.LogoutOnUnauthorized {
		return false
	}
	h.registry.Forget(rc.session.ID)
	h.authService.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}

// back redirects to location after a mutation, unless the session had to be ended.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, rc requestContext, location string) {
	if h.signedOutOnUnauthorized(w, r, rc) {
		return
	}
	h.redirect(w, r, location, nil)
}
