package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RoleAdmin is the authority that unlocks every console action.
const RoleAdmin = "ROLE_ADMIN"

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// Authority is one granted role of a user.
type Authority struct {
	Authority string `json:"authority"`
}

// UserProfile is returned by /login/me.
type UserProfile struct {
	UserID      int64       `json:"userId"`
	Authorities []Authority `json:"authorities"`
}

// HasAuthority reports whether the profile was granted role.
func (u *UserProfile) HasAuthority(role string) bool {
	if u == nil {
		return false
	}
	for _, a := range u.Authorities {
		if a.Authority == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the profile carries ROLE_ADMIN.
func (u *UserProfile) IsAdmin() bool {
	return u.HasAuthority(RoleAdmin)
}

// Car is a rentable vehicle.
type Car struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Model    string  `json:"model"`
	Feature1 string  `json:"feature1"`
	Feature2 string  `json:"feature2"`
	Feature3 string  `json:"feature3"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Booked   int     `json:"booked"`
}

// Features returns the non-empty feature labels in order.
func (c Car) Features() []string {
	var out []string
	for _, f := range []string{c.Feature1, c.Feature2, c.Feature3} {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

// Booking reserves a car for an inclusive range of days.
type Booking struct {
	ID         int64 `json:"id,omitempty"`
	FromDate   Date  `json:"from_date"`
	ToDate     Date  `json:"to_date"`
	CustomerID int64 `json:"customerId"`
	CarID      int64 `json:"car_id"`
	Active     int   `json:"active"`
}

// IsActive reports whether the booking still blocks its days.
func (b Booking) IsActive() bool {
	return b.Active == 1
}

// Customer is a registered renter.
type Customer struct {
	ID           int64  `json:"id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	NoOfOrders   int    `json:"noOfOrders"`
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	// Some backends serialise LocalDate with a time part; keep only the day.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
