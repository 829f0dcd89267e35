package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/config"
	"github.com/jw6ventures/carrental-console/internal/console"
)

type fakeAPI struct {
	mu      sync.Mutex
	hits    map[string]int
	created []backend.Booking
	updated []backend.Customer
	revoked bool
}

// revoke makes the backend reject the stored credential on the car list.
func (f *fakeAPI) revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = true
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.Method+" "+r.URL.Path]++
		revoked := f.revoked
		f.mu.Unlock()

		user, pass, _ := r.BasicAuth()
		switch {
		case revoked && r.URL.Path == "/cars":
			w.WriteHeader(http.StatusUnauthorized)
			return
		case user == "admin" && pass == "secret":
		case user == "bob" && pass == "pw":
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /login/me":
			if user == "admin" {
				_, _ = io.WriteString(w, `{"userId":1,"authorities":[{"authority":"ROLE_ADMIN"}]}`)
				return
			}
			_, _ = io.WriteString(w, `{"userId":2,"authorities":[{"authority":"ROLE_USER"}]}`)
		case "GET /cars":
			_, _ = io.WriteString(w, `[{"id":7,"name":"Civic","model":"2022","type":"Sedan","price":45,"booked":0}]`)
		case "GET /bookings":
			_, _ = io.WriteString(w, `[{"id":3,"from_date":"2099-01-10","to_date":"2099-01-12","customerId":2,"car_id":7,"active":1}]`)
		case "GET /customers/orders", "GET /customers/orders/2":
			_, _ = io.WriteString(w, `[{"id":3,"from_date":"2099-01-10","to_date":"2099-01-12","customerId":2,"car_id":7,"active":1}]`)
		case "GET /customers":
			_, _ = io.WriteString(w, `[]`)
		case "GET /customers/5":
			_, _ = io.WriteString(w, `{"id":5,"firstName":"Ann","lastName":"Lee","customerName":"ann","phone":"555","email":"ann@example.com","password":"stored-pw"}`)
		case "PUT /customers/5":
			var c backend.Customer
			_ = json.NewDecoder(r.Body).Decode(&c)
			f.mu.Lock()
			f.updated = append(f.updated, c)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"id":5}`)
		case "POST /bookings":
			var b backend.Booking
			_ = json.NewDecoder(r.Body).Decode(&b)
			f.mu.Lock()
			f.created = append(f.created, b)
			f.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case "DELETE /cars/7":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

type testEnv struct {
	api      *fakeAPI
	srv      *httptest.Server
	sessions *auth.SessionManager
	registry *console.Registry
}

func testConsole(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	env := newTestEnv(t, nil)
	return env.api, env.srv
}

func newTestEnv(t *testing.T, configure func(*config.Config)) *testEnv {
	t.Helper()
	api, backendSrv := newFakeAPI(t)

	cfg := config.Default()
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"
	if configure != nil {
		configure(cfg)
	}
	sessions, err := auth.NewSessionManager(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	authService := auth.NewService(backend.New(backendSrv.URL, backendSrv.Client()), sessions)
	registry := console.NewRegistry(16, time.Hour)
	h := NewHandler(cfg, authService, registry)

	r := chi.NewRouter()
	r.Use(authService.Attach)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Post("/logout", h.Logout)
		r.Get("/cars", h.Cars)
		r.Get("/cars/{id}/delete", h.ConfirmDeleteCar)
		r.Delete("/cars/{id}", h.DeleteCar)
		r.Post("/cars/{id}/delete", h.DeleteCar)
		r.Get("/cars/{id}/book", h.BookCar)
		r.Get("/bookings", h.Bookings)
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{id}/edit", h.EditBooking)
		r.Get("/customers", h.Customers)
		r.Get("/customers/{id}/edit", h.EditCustomer)
		r.Post("/customers/{id}", h.UpdateCustomer)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{api: api, srv: srv, sessions: sessions, registry: registry}
}

// sessionID decodes the session cookie the browser holds for the console.
func (e *testEnv) sessionID(t *testing.T, c *http.Client) string {
	t.Helper()
	u, _ := url.Parse(e.srv.URL)
	req := httptest.NewRequest(http.MethodGet, e.srv.URL+"/cars", nil)
	for _, ck := range c.Jar.Cookies(u) {
		req.AddCookie(ck)
	}
	sess, ok := e.sessions.Load(req)
	if !ok {
		t.Fatal("browser holds no session")
	}
	return sess.ID
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func login(t *testing.T, c *http.Client, base, user, pass string) string {
	t.Helper()
	code, body := post(t, c, base+"/login", url.Values{"username": {user}, "password": {pass}})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d", user, code)
	}
	return body
}

func TestAnonymousSeesLoginFormOnly(t *testing.T) {
	_, srv := testConsole(t)
	c := newBrowser(t)

	for _, path := range []string{"/cars", "/bookings", "/customers"} {
		code, body := get(t, c, srv.URL+path)
		if code != http.StatusOK || !strings.Contains(body, `action="/login"`) {
			t.Fatalf("GET %s: status %d, want login form", path, code)
		}
		if strings.Contains(body, `href="/cars"`) {
			t.Fatalf("GET %s: navigation shown without a session", path)
		}
	}
}

func TestLoginFailureShowsNotice(t *testing.T) {
	_, srv := testConsole(t)
	c := newBrowser(t)

	code, body := post(t, c, srv.URL+"/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
	if !strings.Contains(body, "Invalid username or password") {
		t.Fatal("missing failure notice")
	}
	if !strings.Contains(body, `value="admin"`) {
		t.Fatal("username not kept in the form")
	}
}

func TestAdminNavigationAcrossLoginCycles(t *testing.T) {
	_, srv := testConsole(t)
	c := newBrowser(t)

	for cycle := 0; cycle < 3; cycle++ {
		body := login(t, c, srv.URL, "admin", "secret")
		if got := strings.Count(body, `href="/customers"`); got != 1 {
			t.Fatalf("cycle %d: customers nav entries = %d, want 1", cycle, got)
		}
		code, body := post(t, c, srv.URL+"/logout", nil)
		if code != http.StatusOK || !strings.Contains(body, `action="/login"`) {
			t.Fatalf("cycle %d: logout did not land on the login form", cycle)
		}
		if strings.Contains(body, `href="/customers"`) {
			t.Fatalf("cycle %d: admin nav survived logout", cycle)
		}
	}

	body := login(t, c, srv.URL, "bob", "pw")
	if strings.Contains(body, `href="/customers"`) {
		t.Fatal("customer sees the customers nav entry")
	}
}

func TestCustomerRoleGating(t *testing.T) {
	_, srv := testConsole(t)
	c := newBrowser(t)
	body := login(t, c, srv.URL, "bob", "pw")

	if !strings.Contains(body, "Book Now") {
		t.Fatal("customer should see Book Now")
	}
	if strings.Contains(body, "/cars/7/edit") || strings.Contains(body, "Add New Car") {
		t.Fatal("customer must not see car edit controls")
	}

	code, body := get(t, c, srv.URL+"/bookings")
	if code != http.StatusOK {
		t.Fatalf("GET /bookings: %d", code)
	}
	if strings.Contains(body, "<th>Actions</th>") || strings.Contains(body, "/bookings/3/edit") {
		t.Fatal("customer must not see booking actions")
	}

	if code, _ := get(t, c, srv.URL+"/customers"); code != http.StatusForbidden {
		t.Fatalf("GET /customers: %d, want 403", code)
	}
	if code, _ := get(t, c, srv.URL+"/cars/7/delete"); code != http.StatusForbidden {
		t.Fatalf("GET /cars/7/delete: %d, want 403", code)
	}
}

func TestAdminSeesEditControls(t *testing.T) {
	_, srv := testConsole(t)
	c := newBrowser(t)
	body := login(t, c, srv.URL, "admin", "secret")

	for _, want := range []string{"Add New Car", "/cars/7/edit", "/cars/7/delete"} {
		if !strings.Contains(body, want) {
			t.Fatalf("admin cars page missing %q", want)
		}
	}
	if strings.Contains(body, "Book Now") {
		t.Fatal("admin must not see Book Now")
	}

	_, body = get(t, c, srv.URL+"/customers")
	if !strings.Contains(body, "No customers available") || !strings.Contains(body, "Add New Customer") {
		t.Fatal("empty customers page incomplete")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api, srv := testConsole(t)
	c := newBrowser(t)
	login(t, c, srv.URL, "admin", "secret")

	code, body := get(t, c, srv.URL+"/cars/7/delete")
	if code != http.StatusOK || !strings.Contains(body, "Are you sure you want to delete this car?") {
		t.Fatalf("confirm page: status %d", code)
	}

	del := func(form url.Values) {
		post(t, c, srv.URL+"/cars/7/delete", form)
	}

	del(url.Values{})
	if got := api.count("DELETE /cars/7"); got != 0 {
		t.Fatalf("unconfirmed delete sent %d requests", got)
	}
	del(url.Values{"confirm": {"yes"}})
	if got := api.count("DELETE /cars/7"); got != 1 {
		t.Fatalf("confirmed delete sent %d requests, want 1", got)
	}
}

func TestBookingOverlapShowsFormAgain(t *testing.T) {
	api, srv := testConsole(t)
	c := newBrowser(t)
	login(t, c, srv.URL, "bob", "pw")

	code, body := get(t, c, srv.URL+"/cars/7/book")
	if code != http.StatusOK || !strings.Contains(body, "2099-01-11") {
		t.Fatalf("booking form: status %d, unavailable days missing", code)
	}

	code, body = post(t, c, srv.URL+"/bookings", url.Values{
		"car_id": {"7"}, "from_date": {"2099-01-11"}, "to_date": {"2099-01-13"},
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("overlap: status %d, want 422", code)
	}
	if !strings.Contains(body, "Selected date range includes unavailable dates.") {
		t.Fatal("overlap notice missing")
	}
	if strings.Contains(body, `value="2099-01-11"`) || strings.Contains(body, `value="2099-01-13"`) {
		t.Fatal("dates were not reset")
	}
	if got := api.count("POST /bookings"); got != 0 {
		t.Fatal("overlapping booking was sent")
	}

	code, body = post(t, c, srv.URL+"/bookings", url.Values{
		"car_id": {"7"}, "from_date": {"2099-01-13"}, "to_date": {"2099-01-15"},
	})
	if code != http.StatusOK || !strings.Contains(body, "Booking created successfully!") {
		t.Fatalf("create: status %d", code)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.created) != 1 || api.created[0].CustomerID != 2 || api.created[0].Active != 1 {
		t.Fatalf("created = %+v", api.created)
	}
}

func TestEditBookingUsesSnapshot(t *testing.T) {
	api, srv := testConsole(t)
	c := newBrowser(t)
	login(t, c, srv.URL, "admin", "secret")
	get(t, c, srv.URL+"/bookings")

	code, body := get(t, c, srv.URL+"/bookings/3/edit")
	if code != http.StatusOK || !strings.Contains(body, `value="2099-01-10"`) {
		t.Fatalf("edit form: status %d", code)
	}
	if got := api.count("GET /bookings"); got != 1 {
		t.Fatalf("bookings fetched %d times, want 1", got)
	}
}

func TestRevokedCredentialEndsSessionWhenConfigured(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.UI.LogoutOnUnauthorized = true })
	c := newBrowser(t)
	login(t, c, env.srv.URL, "admin", "secret")
	id := env.sessionID(t, c)
	if !env.registry.Has(id) {
		t.Fatal("no view state after login")
	}

	env.api.revoke()
	noFollow := &http.Client{
		Jar:           c.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := noFollow.Get(env.srv.URL + "/cars")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("status %d location %q, want redirect to /login", resp.StatusCode, resp.Header.Get("Location"))
	}
	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == "carrental_session" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie not cleared")
	}
	if env.registry.Has(id) {
		t.Fatal("view state survived the forced logout")
	}

	code, body := get(t, c, env.srv.URL+"/cars")
	if code != http.StatusOK || !strings.Contains(body, `action="/login"`) {
		t.Fatalf("after logout: status %d, want login form", code)
	}
}

func TestRevokedCredentialKeepsSessionByDefault(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newBrowser(t)
	login(t, c, env.srv.URL, "admin", "secret")
	id := env.sessionID(t, c)

	env.api.revoke()
	code, body := get(t, c, env.srv.URL+"/cars")
	if code != http.StatusOK {
		t.Fatalf("status %d, want 200", code)
	}
	if !strings.Contains(body, "Failed to load cars. Please try again.") {
		t.Fatal("failure notice missing")
	}
	if strings.Contains(body, `action="/login"`) {
		t.Fatal("user was signed out")
	}
	if !env.registry.Has(id) {
		t.Fatal("view state dropped")
	}
}

func TestEditCustomerWithoutPasswordKeepsStoredOne(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newBrowser(t)
	login(t, c, env.srv.URL, "admin", "secret")

	code, body := get(t, c, env.srv.URL+"/customers/5/edit")
	if code != http.StatusOK || !strings.Contains(body, `value="ann@example.com"`) {
		t.Fatalf("edit form: status %d", code)
	}
	if strings.Contains(body, "stored-pw") {
		t.Fatal("edit form leaks the stored password")
	}

	code, body = post(t, c, env.srv.URL+"/customers/5", url.Values{
		"firstName": {"Ann"}, "lastName": {"Lee"}, "customerName": {"ann"},
		"phone": {"555-0100"}, "email": {"ann@example.com"}, "password": {""},
	})
	if code != http.StatusOK || strings.Contains(body, "Failed to update customer") {
		t.Fatalf("update: status %d", code)
	}

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	if len(env.api.updated) != 1 {
		t.Fatalf("updates sent = %d, want 1", len(env.api.updated))
	}
	if got := env.api.updated[0]; got.Password != "stored-pw" || got.Phone != "555-0100" {
		t.Fatalf("update = %+v, want stored password and new phone", got)
	}
}

func TestSortSurvivesReload(t *testing.T) {
	env := newTestEnv(t, nil)
	c := newBrowser(t)
	login(t, c, env.srv.URL, "admin", "secret")

	code, body := get(t, c, env.srv.URL+"/bookings?sort=id")
	if code != http.StatusOK || !strings.Contains(body, "ID ↑") {
		t.Fatalf("sort: status %d, want ascending ID", code)
	}
	for i := 0; i < 3; i++ {
		_, body = get(t, c, env.srv.URL+"/bookings")
		if !strings.Contains(body, "ID ↑") {
			t.Fatalf("reload %d flipped the sort", i)
		}
	}

	_, body = get(t, c, env.srv.URL+"/bookings?sort=id")
	if !strings.Contains(body, "ID ↓") {
		t.Fatal("second click did not reverse the sort")
	}
}
