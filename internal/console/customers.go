package console

import (
	"context"
	"strconv"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/table"
)

// CustomersAPI is the part of the backend client the customers view uses.
type CustomersAPI interface {
	ListCustomers(ctx context.Context) ([]backend.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*backend.Customer, error)
	CreateCustomer(ctx context.Context, customer backend.Customer) error
	UpdateCustomer(ctx context.Context, id int64, customer backend.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

var customerColumns = []table.Column[backend.Customer]{
	{ID: "id", Label: "ID", Kind: table.Number, Cell: func(c backend.Customer) string { return itoa(c.ID) }},
	{ID: "firstName", Label: "First Name", Cell: func(c backend.Customer) string { return c.FirstName }},
	{ID: "lastName", Label: "Last Name", Cell: func(c backend.Customer) string { return c.LastName }},
	{ID: "customerName", Label: "Username", Cell: func(c backend.Customer) string { return c.CustomerName }},
	{ID: "phone", Label: "Phone", Cell: func(c backend.Customer) string { return c.Phone }},
	{ID: "email", Label: "Email", Cell: func(c backend.Customer) string { return c.Email }},
	{ID: "noOfOrders", Label: "Orders", Kind: table.Number, Cell: func(c backend.Customer) string { return strconv.Itoa(c.NoOfOrders) }},
}

type CustomersView struct {
	api    CustomersAPI
	policy auth.Policy
	state  *State
}

func NewCustomersView(api CustomersAPI, policy auth.Policy, state *State) *CustomersView {
	return &CustomersView{api: api, policy: policy, state: state}
}

// Allowed reports whether the user may open the customers view at all.
func (v *CustomersView) Allowed() bool {
	return v.policy.Can(auth.ActionView, auth.ResourceCustomers)
}

func (v *CustomersView) Render(ctx context.Context) Table {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()

	if !v.state.customers.takeReuse() {
		_ = v.refresh(ctx)
	}
	return buildTable(customerColumns, v.state.sort, "/customers", &v.state.customers,
		func(c backend.Customer) int64 { return c.ID },
		func(c backend.Customer) []Action { return editDelete("/customers", c.ID) },
		v.policy.Can(auth.ActionEdit, auth.ResourceCustomers), "No customers available")
}

func (v *CustomersView) Refresh(ctx context.Context) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	return v.refresh(ctx)
}

func (v *CustomersView) refresh(ctx context.Context) error {
	if !v.Allowed() {
		return ErrForbidden
	}
	rows, err := v.api.ListCustomers(ctx)
	if err != nil {
		v.state.fail(ctx, "Failed to load customers", err)
		v.state.customers.failed = true
		return err
	}
	table.Sort(rows, customerColumns, v.state.sort)
	v.state.customers.replace(rows)
	return nil
}

// SortBy toggles the shared sort descriptor on column and sorts the snapshot in place.
func (v *CustomersView) SortBy(column string) {
	if _, ok := table.Find(customerColumns, column); !ok {
		return
	}
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	v.state.sort.Toggle(column)
	table.Sort(v.state.customers.rows, customerColumns, v.state.sort)
	v.state.customers.reuse = true
}

// Get loads one customer for the edit form.
func (v *CustomersView) Get(ctx context.Context, id int64) (*backend.Customer, error) {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceCustomers) {
		return nil, ErrForbidden
	}
	c, err := v.api.GetCustomer(ctx, id)
	if err != nil {
		v.state.mu.Lock()
		v.state.fail(ctx, "Failed to load customer data", err)
		v.state.customers.reuse = true
		v.state.mu.Unlock()
		return nil, err
	}
	return c, nil
}

// Create registers a customer; new customers start with no orders.
func (v *CustomersView) Create(ctx context.Context, c backend.Customer) error {
	if !v.policy.Can(auth.ActionCreate, auth.ResourceCustomers) {
		return ErrForbidden
	}
	c.ID = 0
	c.NoOfOrders = 0
	return v.mutate(ctx, "Successfully created customer", "Failed to create customer", func() error {
		return v.api.CreateCustomer(ctx, c)
	})
}

// Update replaces a customer. An empty password keeps the stored one.
func (v *CustomersView) Update(ctx context.Context, id int64, c backend.Customer) error {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceCustomers) {
		return ErrForbidden
	}
	c.ID = id
	return v.mutate(ctx, "Successfully updated customer", "Failed to update customer", func() error {
		if c.Password == "" {
			current, err := v.api.GetCustomer(ctx, id)
			if err != nil {
				return err
			}
			c.Password = current.Password
		}
		return v.api.UpdateCustomer(ctx, id, c)
	})
}

// Delete removes a customer. Nothing is sent unless confirmed is true.
func (v *CustomersView) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !v.policy.Can(auth.ActionDelete, auth.ResourceCustomers) {
		return ErrForbidden
	}
	if !confirmed {
		return nil
	}
	return v.mutate(ctx, "Successfully deleted customer", "Failed to delete customer", func() error {
		return v.api.DeleteCustomer(ctx, id)
	})
}

func (v *CustomersView) mutate(ctx context.Context, okMsg, failMsg string, call func() error) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	if err := call(); err != nil {
		v.state.fail(ctx, failMsg, err)
		v.state.customers.reuse = true
		return err
	}
	v.state.notify(okMsg, NoticePositive)
	_ = v.refresh(ctx)
	v.state.customers.reuse = true
	return nil
}
