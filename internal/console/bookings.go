package console

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/availability"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/table"
)

// OverlapMessage is shown when a requested range hits a booked day.
const OverlapMessage = "Selected date range includes unavailable dates. Please choose different dates."

// BookingsAPI is the part of the backend client the bookings view uses.
type BookingsAPI interface {
	ListBookings(ctx context.Context) ([]backend.Booking, error)
	OrdersForCustomer(ctx context.Context, userID int64) ([]backend.Booking, error)
	MyOrders(ctx context.Context) ([]backend.Booking, error)
	CreateBooking(ctx context.Context, booking backend.Booking) error
	UpdateBooking(ctx context.Context, id int64, booking backend.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
}

var bookingColumns = []table.Column[backend.Booking]{
	{ID: "id", Label: "ID", Kind: table.Number, Cell: func(b backend.Booking) string { return itoa(b.ID) }},
	{ID: "from_date", Label: "From Date", Kind: table.Date, Cell: func(b backend.Booking) string { return b.FromDate.String() }},
	{ID: "to_date", Label: "To Date", Kind: table.Date, Cell: func(b backend.Booking) string { return b.ToDate.String() }},
	{ID: "customerId", Label: "Customer ID", Kind: table.Number, Cell: func(b backend.Booking) string { return itoa(b.CustomerID) }},
	{ID: "car_id", Label: "Car ID", Kind: table.Number, Cell: func(b backend.Booking) string { return itoa(b.CarID) }},
	{
		ID: "active", Label: "Status", Kind: table.Number,
		Cell: func(b backend.Booking) string {
			if b.IsActive() {
				return "Active"
			}
			return "Inactive"
		},
		Key: func(b backend.Booking) string { return strconv.Itoa(b.Active) },
	},
}

// BookingForm is the model of the "book a car" form.
type BookingForm struct {
	CarID       int64
	From        string
	To          string
	MinFrom     string
	MinTo       string
	Unavailable []string
}

type BookingsView struct {
	api    BookingsAPI
	policy auth.Policy
	userID int64
	state  *State
	now    func() time.Time
}

func NewBookingsView(api BookingsAPI, policy auth.Policy, userID int64, state *State) *BookingsView {
	return &BookingsView{api: api, policy: policy, userID: userID, state: state, now: time.Now}
}

// Render returns the bookings table, fetching unless the snapshot is marked for reuse.
func (v *BookingsView) Render(ctx context.Context) Table {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()

	if !v.state.bookings.takeReuse() {
		_ = v.refresh(ctx)
	}
	showActions := v.policy.Can(auth.ActionEdit, auth.ResourceBookings)
	return buildTable(bookingColumns, v.state.sort, "/bookings", &v.state.bookings,
		func(b backend.Booking) int64 { return b.ID },
		func(b backend.Booking) []Action { return editDelete("/bookings", b.ID) },
		showActions, "No bookings available")
}

// Refresh re-fetches the bookings visible to the user and re-applies the active sort.
// Administrators see every booking, customers only their own.
func (v *BookingsView) Refresh(ctx context.Context) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	return v.refresh(ctx)
}

func (v *BookingsView) refresh(ctx context.Context) error {
	var (
		rows []backend.Booking
		err  error
	)
	if v.policy.IsAdmin() {
		rows, err = v.api.ListBookings(ctx)
	} else {
		rows, err = v.api.OrdersForCustomer(ctx, v.userID)
	}
	if err != nil {
		v.state.fail(ctx, "Failed to load bookings", err)
		v.state.bookings.failed = true
		return err
	}
	table.Sort(rows, bookingColumns, v.state.sort)
	v.state.bookings.replace(rows)
	return nil
}

// SortBy toggles the shared sort descriptor on column and sorts the snapshot in place.
func (v *BookingsView) SortBy(column string) {
	if _, ok := table.Find(bookingColumns, column); !ok {
		return
	}
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	v.state.sort.Toggle(column)
	table.Sort(v.state.bookings.rows, bookingColumns, v.state.sort)
	v.state.bookings.reuse = true
}

// Get returns a booking from the retained snapshot, fetching it first if none is held.
func (v *BookingsView) Get(ctx context.Context, id int64) (backend.Booking, error) {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceBookings) {
		return backend.Booking{}, ErrForbidden
	}
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	if !v.state.bookings.loaded {
		if err := v.refresh(ctx); err != nil {
			return backend.Booking{}, err
		}
	}
	for _, b := range v.state.bookings.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return backend.Booking{}, errNotFound
}

var errNotFound = errors.New("record not found")

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, errNotFound) }

// NewBookingForm prepares the booking form for carID, listing its unavailable days from
// today to availability.MaxDays past the pick-up day. from, when set, moves the earliest
// allowed return day.
func (v *BookingsView) NewBookingForm(ctx context.Context, carID int64, from string) (BookingForm, error) {
	if !v.policy.Can(auth.ActionBook, auth.ResourceCars) {
		return BookingForm{}, ErrForbidden
	}
	today := availability.Day(v.now())
	form := BookingForm{
		CarID:   carID,
		MinFrom: today.Format(backend.DateLayout),
		MinTo:   availability.MinTo(today).Format(backend.DateLayout),
	}
	horizon := today
	if d, err := backend.ParseDate(from); err == nil {
		form.From = d.String()
		form.MinTo = availability.MinTo(d.Time).Format(backend.DateLayout)
		if d.Time.After(horizon) {
			horizon = availability.Day(d.Time)
		}
	}

	booked, err := v.bookedDates(ctx, carID)
	if err != nil {
		v.state.mu.Lock()
		v.state.fail(ctx, "Failed to load bookings", err)
		v.state.mu.Unlock()
		return form, err
	}
	window := availability.Range{From: today, To: horizon.AddDate(0, 0, availability.MaxDays)}
	for _, d := range booked.Conflicts(window) {
		form.Unavailable = append(form.Unavailable, d.Format(backend.DateLayout))
	}
	return form, nil
}

// bookedDates collects the days covered by the active bookings of carID.
func (v *BookingsView) bookedDates(ctx context.Context, carID int64) (availability.BookedDates, error) {
	orders, err := v.api.MyOrders(ctx)
	if err != nil {
		return nil, err
	}
	var ranges []availability.Range
	for _, b := range orders {
		if b.CarID != carID || !b.IsActive() {
			continue
		}
		ranges = append(ranges, availability.Range{From: b.FromDate.Time, To: b.ToDate.Time})
	}
	return availability.Booked(ranges...), nil
}

// Create books carID for the signed-in user. The range is rejected with an
// *availability.ValidationError when it is in the past, not ordered, or hits a booked day.
func (v *BookingsView) Create(ctx context.Context, carID int64, from, to string) error {
	if !v.policy.Can(auth.ActionCreate, auth.ResourceBookings) || !v.policy.Can(auth.ActionBook, auth.ResourceCars) {
		return ErrForbidden
	}
	v.state.mu.Lock()
	defer v.state.mu.Unlock()

	const failMsg = "Failed to create booking."
	fromDate, err := backend.ParseDate(from)
	if err != nil {
		v.state.fail(ctx, failMsg, err)
		return &availability.ValidationError{Err: availability.ErrOrder}
	}
	toDate, err := backend.ParseDate(to)
	if err != nil {
		v.state.fail(ctx, failMsg, err)
		return &availability.ValidationError{Err: availability.ErrOrder}
	}

	booked, err := v.bookedDates(ctx, carID)
	if err != nil {
		v.state.fail(ctx, failMsg, err)
		v.state.bookings.reuse = true
		return err
	}
	req := availability.Range{From: fromDate.Time, To: toDate.Time}
	if err := availability.Validate(req, v.now(), booked); err != nil {
		v.state.notify(validationMessage(err), NoticeNegative)
		v.state.bookings.reuse = true
		return err
	}

	booking := backend.Booking{
		FromDate:   fromDate,
		ToDate:     toDate,
		CustomerID: v.userID,
		CarID:      carID,
		Active:     1,
	}
	if err := v.api.CreateBooking(ctx, booking); err != nil {
		v.state.fail(ctx, failMsg, err)
		v.state.bookings.reuse = true
		return err
	}
	v.state.notify("Booking created successfully!", NoticePositive)
	_ = v.refresh(ctx)
	v.state.bookings.reuse = true
	return nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, availability.ErrOverlap):
		return OverlapMessage
	case errors.Is(err, availability.ErrPast):
		return "From date cannot be in the past."
	case errors.Is(err, availability.ErrTooLong):
		return "Bookings can cover at most " + strconv.Itoa(availability.MaxDays) + " days."
	default:
		return "To date must be after from date."
	}
}

func (v *BookingsView) Update(ctx context.Context, id int64, booking backend.Booking) error {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceBookings) {
		return ErrForbidden
	}
	booking.ID = id
	return v.mutate(ctx, "Successfully updated booking", "Failed to update booking.", func() error {
		return v.api.UpdateBooking(ctx, id, booking)
	})
}

// Delete removes a booking. Nothing is sent unless confirmed is true.
func (v *BookingsView) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !v.policy.Can(auth.ActionDelete, auth.ResourceBookings) {
		return ErrForbidden
	}
	if !confirmed {
		return nil
	}
	return v.mutate(ctx, "Successfully deleted booking", "Failed to delete booking", func() error {
		return v.api.DeleteBooking(ctx, id)
	})
}

func (v *BookingsView) mutate(ctx context.Context, okMsg, failMsg string, call func() error) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	if err := call(); err != nil {
		v.state.fail(ctx, failMsg, err)
		v.state.bookings.reuse = true
		return err
	}
	v.state.notify(okMsg, NoticePositive)
	_ = v.refresh(ctx)
	v.state.bookings.reuse = true
	return nil
}
