package backend

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListCars(ctx context.Context) ([]Car, error) {
	var cars []Car
	if err := c.do(ctx, "cars.list", http.MethodGet, "/cars", nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *Client) GetCar(ctx context.Context, id int64) (*Car, error) {
	var car Car
	if err := c.do(ctx, "cars.get", http.MethodGet, fmt.Sprintf("/cars/%d", id), nil, &car); err != nil {
		return nil, err
	}
	return &car, nil
}

func (c *Client) CreateCar(ctx context.Context, car Car) error {
	car.ID = 0
	return c.do(ctx, "cars.create", http.MethodPost, "/cars", car, nil)
}

func (c *Client) UpdateCar(ctx context.Context, id int64, car Car) error {
	car.ID = id
	return c.do(ctx, "cars.update", http.MethodPut, fmt.Sprintf("/cars/%d", id), car, nil)
}

func (c *Client) DeleteCar(ctx context.Context, id int64) error {
	return c.do(ctx, "cars.delete", http.MethodDelete, fmt.Sprintf("/cars/%d", id), nil, nil)
}

// ListBookings returns every booking; only admins are allowed to call it.
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.do(ctx, "bookings.list", http.MethodGet, "/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, booking Booking) error {
	booking.ID = 0
	return c.do(ctx, "bookings.create", http.MethodPost, "/bookings", booking, nil)
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, booking Booking) error {
	booking.ID = id
	return c.do(ctx, "bookings.update", http.MethodPut, fmt.Sprintf("/bookings/%d", id), booking, nil)
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.do(ctx, "bookings.delete", http.MethodDelete, fmt.Sprintf("/bookings/%d", id), nil, nil)
}

// MyOrders returns the authenticated caller's bookings.
func (c *Client) MyOrders(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.do(ctx, "customers.orders", http.MethodGet, "/customers/orders", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// OrdersForCustomer returns the bookings of one customer.
func (c *Client) OrdersForCustomer(ctx context.Context, userID int64) ([]Booking, error) {
	var bookings []Booking
	if err := c.do(ctx, "customers.orders_for", http.MethodGet, fmt.Sprintf("/customers/orders/%d", userID), nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	if err := c.do(ctx, "customers.list", http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, "customers.get", http.MethodGet, fmt.Sprintf("/customers/%d", id), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer Customer) error {
	customer.ID = 0
	return c.do(ctx, "customers.create", http.MethodPost, "/customers", customer, nil)
}

func (c *Client) UpdateCustomer(ctx context.Context, id int64, customer Customer) error {
	customer.ID = id
	return c.do(ctx, "customers.update", http.MethodPut, fmt.Sprintf("/customers/%d", id), customer, nil)
}

func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.do(ctx, "customers.delete", http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil, nil)
}
