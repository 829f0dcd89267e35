package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jw6ventures/carrental-console/internal/config"
)

func TestMiddlewareIssuesTokenOnGet(t *testing.T) {
	var seen string
	h := Middleware(&config.Config{BaseURL: "http://localhost"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TokenFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if seen == "" {
		t.Fatal("expected token in context")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != seen || cookies[0].Secure {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}

func TestMiddlewareValidatesMutations(t *testing.T) {
	tests := []struct {
		name     string
		formTok  string
		header   string
		wantCode int
	}{
		{name: "missing token", wantCode: http.StatusForbidden},
		{name: "wrong token", formTok: "nope", wantCode: http.StatusForbidden},
		{name: "form token", formTok: "tok", wantCode: http.StatusOK},
		{name: "header token", header: "tok", wantCode: http.StatusOK},
	}
	h := Middleware(&config.Config{BaseURL: "https://console.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.formTok != "" {
				form.Set(FormField, tt.formTok)
			}
			req := httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(&http.Cookie{Name: cookieName, Value: "tok"})
			if tt.header != "" {
				req.Header.Set(headerName, tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
