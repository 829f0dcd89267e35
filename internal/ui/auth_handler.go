package ui

import (
	"net/http"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/console"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
)

// LoginPage shows the login form, or sends signed-in users to the default view.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/cars", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", h.pageData(r, requestContext{}, "", map[string]any{"Title": "Login"}))
}

// Login verifies the credentials with the backend and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid form")
		return
	}
	username := r.FormValue("username")
	sess, err := h.authService.Login(r.Context(), w, r, username, r.FormValue("password"))
	if err != nil {
		httperrors.LogError(r, "login failed", err)
		data := h.pageData(r, requestContext{}, "", map[string]any{
			"Title":    "Login",
			"Username": username,
			"Notices":  []console.Notice{{Message: "Invalid username or password", Kind: console.NoticeNegative}},
		})
		h.renderStatus(w, r, http.StatusUnauthorized, "login.html", data)
		return
	}
	// A fresh session never inherits view state.
	h.registry.Forget(sess.ID)
	http.Redirect(w, r, "/cars", http.StatusFound)
}

// Logout ends the session; the next page is the login form without any navigation.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		h.registry.Forget(sess.ID)
	}
	h.authService.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}
