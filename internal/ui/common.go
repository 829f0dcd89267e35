package ui

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/console"
	"github.com/jw6ventures/carrental-console/internal/http/csrf"
	httperrors "github.com/jw6ventures/carrental-console/internal/http/errors"
)

// pageData adds the layout fields (navigation, notices, CSRF token) to template data.
func (h *Handler) pageData(r *http.Request, rc requestContext, active string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["Nav"] = navigation(rc.policy, active)
	data["SignedIn"] = rc.session != nil
	data["IsAdmin"] = rc.policy.IsAdmin()
	data["NoticeTTL"] = h.cfg.UI.NoticeTTL.Milliseconds()
	data["CSRFField"] = csrf.FormField
	if token := csrf.TokenFromContext(r.Context()); token != "" {
		data["CSRFToken"] = token
	}
	if rc.state != nil {
		notices := rc.state.Notices()
		if extra, ok := data["Notices"].([]console.Notice); ok {
			notices = append(notices, extra...)
		}
		data["Notices"] = notices
	}
	return data
}

// redirect redirects to a path with query parameters.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// render executes a template and writes the response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderStatus(w, r, http.StatusOK, name, data)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		httperrors.InternalError(w, r, fmt.Errorf("template not found"), fmt.Sprintf("template %q not found", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		httperrors.LogError(r, fmt.Sprintf("template render error for %q", name), err)
	}
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// allow writes 403 and returns false when the policy denies action on resource.
func allow(w http.ResponseWriter, r *http.Request, policy auth.Policy, action auth.Action, resource auth.Resource) bool {
	if policy.Can(action, resource) {
		return true
	}
	httperrors.Forbidden(w, r, string(action)+" "+string(resource))
	return false
}

func forbidden(w http.ResponseWriter, r *http.Request, err error) bool {
	if errors.Is(err, console.ErrForbidden) {
		httperrors.Forbidden(w, r, err.Error())
		return true
	}
	return false
}

// confirmPage renders the delete confirmation for one record.
func (h *Handler) confirmPage(w http.ResponseWriter, r *http.Request, rc requestContext, active, message, action string) {
	data := h.pageData(r, rc, active, map[string]any{
		"Title":   "Confirm",
		"Message": message,
		"Action":  action,
		"Cancel":  active,
	})
	h.render(w, r, "confirm.html", data)
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}
