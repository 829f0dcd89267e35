package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jw6ventures/carrental-console/internal/backend"
)

func carFromForm(r *http.Request) (backend.Car, error) {
	car := backend.Car{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Model:    strings.TrimSpace(r.FormValue("model")),
		Feature1: strings.TrimSpace(r.FormValue("feature1")),
		Feature2: strings.TrimSpace(r.FormValue("feature2")),
		Feature3: strings.TrimSpace(r.FormValue("feature3")),
		Type:     strings.TrimSpace(r.FormValue("type")),
	}
	if car.Name == "" || car.Model == "" || car.Type == "" {
		return car, fmt.Errorf("name, model and type are required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil || price < 0 {
		return car, fmt.Errorf("invalid price %q", r.FormValue("price"))
	}
	car.Price = price
	booked := strings.TrimSpace(r.FormValue("booked"))
	if booked == "" {
		booked = "0"
	}
	if car.Booked, err = strconv.Atoi(booked); err != nil {
		return car, fmt.Errorf("invalid booked count %q", r.FormValue("booked"))
	}
	return car, nil
}

// customerFromForm parses the customer form. On edit the password may be left blank.
func customerFromForm(r *http.Request, edit bool) (backend.Customer, error) {
	c := backend.Customer{
		FirstName:    strings.TrimSpace(r.FormValue("firstName")),
		LastName:     strings.TrimSpace(r.FormValue("lastName")),
		CustomerName: strings.TrimSpace(r.FormValue("customerName")),
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Password:     r.FormValue("password"),
	}
	if c.FirstName == "" || c.LastName == "" || c.CustomerName == "" || c.Phone == "" || c.Email == "" {
		return c, fmt.Errorf("all customer fields are required")
	}
	if c.Password == "" && !edit {
		return c, fmt.Errorf("password is required")
	}
	if orders := strings.TrimSpace(r.FormValue("noOfOrders")); orders != "" {
		n, err := strconv.Atoi(orders)
		if err != nil {
			return c, fmt.Errorf("invalid order count %q", orders)
		}
		c.NoOfOrders = n
	}
	return c, nil
}

func bookingFromForm(r *http.Request) (backend.Booking, error) {
	from, err := backend.ParseDate(r.FormValue("from_date"))
	if err != nil {
		return backend.Booking{}, err
	}
	to, err := backend.ParseDate(r.FormValue("to_date"))
	if err != nil {
		return backend.Booking{}, err
	}
	customerID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("customerId")), 10, 64)
	if err != nil {
		return backend.Booking{}, fmt.Errorf("invalid customer id: %w", err)
	}
	carID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("car_id")), 10, 64)
	if err != nil {
		return backend.Booking{}, fmt.Errorf("invalid car id: %w", err)
	}
	active := 0
	if r.FormValue("active") == "1" {
		active = 1
	}
	return backend.Booking{FromDate: from, ToDate: to, CustomerID: customerID, CarID: carID, Active: active}, nil
}

func formID(r *http.Request, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(field)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", field, r.FormValue(field))
	}
	return id, nil
}
