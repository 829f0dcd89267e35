package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jw6ventures/carrental-console/internal/auth"
	"github.com/jw6ventures/carrental-console/internal/backend"
	"github.com/jw6ventures/carrental-console/internal/table"
)

// CarsAPI is the part of the backend client the cars view uses.
type CarsAPI interface {
	ListCars(ctx context.Context) ([]backend.Car, error)
	GetCar(ctx context.Context, id int64) (*backend.Car, error)
	CreateCar(ctx context.Context, car backend.Car) error
	UpdateCar(ctx context.Context, id int64, car backend.Car) error
	DeleteCar(ctx context.Context, id int64) error
}

// Car sort keys.
const (
	CarSortName = "name"
	CarSortType = "type"
)

// CarCard is one rendered car.
type CarCard struct {
	ID       int64
	Title    string
	Type     string
	Price    string
	Features string
	Actions  []Action
}

type CarsPage struct {
	Cards     []CarCard
	SortKey   string
	CanCreate bool
	Empty     string
}

type CarsView struct {
	api    CarsAPI
	policy auth.Policy
	state  *State
}

func NewCarsView(api CarsAPI, policy auth.Policy, state *State) *CarsView {
	return &CarsView{api: api, policy: policy, state: state}
}

// Render returns the page model, fetching the collection unless the snapshot is marked for reuse.
func (v *CarsView) Render(ctx context.Context) CarsPage {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()

	if !v.state.cars.takeReuse() {
		_ = v.refresh(ctx)
	}

	page := CarsPage{SortKey: v.state.carSort, CanCreate: v.policy.Can(auth.ActionCreate, auth.ResourceCars)}
	snap := &v.state.cars
	if snap.failed {
		return page
	}
	if len(snap.rows) == 0 {
		page.Empty = "No cars available"
		return page
	}
	for _, c := range snap.rows {
		page.Cards = append(page.Cards, CarCard{
			ID:       c.ID,
			Title:    strings.TrimSpace(c.Name + " " + c.Model),
			Type:     c.Type,
			Price:    fmt.Sprintf("$%.2f/day", c.Price),
			Features: strings.Join(c.Features(), " | "),
			Actions:  v.actions(c),
		})
	}
	return page
}

func (v *CarsView) actions(c backend.Car) []Action {
	var out []Action
	if v.policy.Can(auth.ActionEdit, auth.ResourceCars) {
		out = append(out, editDelete("/cars", c.ID)...)
	}
	if v.policy.Can(auth.ActionBook, auth.ResourceCars) {
		out = append(out, Action{Label: "Book Now", URL: "/cars/" + itoa(c.ID) + "/book", Class: "btn-standard"})
	}
	return out
}

// Refresh re-fetches the cars and re-applies the active sort.
func (v *CarsView) Refresh(ctx context.Context) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	return v.refresh(ctx)
}

func (v *CarsView) refresh(ctx context.Context) error {
	cars, err := v.api.ListCars(ctx)
	if err != nil {
		v.state.fail(ctx, "Failed to load cars. Please try again.", err)
		v.state.cars.failed = true
		return err
	}
	sortCars(cars, v.state.carSort)
	v.state.cars.replace(cars)
	return nil
}

// SortBy orders the snapshot by name or type, ascending, without re-fetching.
func (v *CarsView) SortBy(key string) {
	if key != CarSortName && key != CarSortType {
		return
	}
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	v.state.carSort = key
	sortCars(v.state.cars.rows, key)
	v.state.cars.reuse = true
}

func sortCars(cars []backend.Car, key string) {
	cmp := table.Comparator(table.Text)
	switch key {
	case CarSortName:
		slices.SortStableFunc(cars, func(a, b backend.Car) int { return cmp(a.Name, b.Name) })
	case CarSortType:
		slices.SortStableFunc(cars, func(a, b backend.Car) int { return cmp(a.Type, b.Type) })
	}
}

// Get loads one car for the edit form.
func (v *CarsView) Get(ctx context.Context, id int64) (*backend.Car, error) {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceCars) {
		return nil, ErrForbidden
	}
	car, err := v.api.GetCar(ctx, id)
	if err != nil {
		v.state.mu.Lock()
		v.state.fail(ctx, "Failed to load car data", err)
		v.state.cars.reuse = true
		v.state.mu.Unlock()
		return nil, err
	}
	return car, nil
}

func (v *CarsView) Create(ctx context.Context, car backend.Car) error {
	if !v.policy.Can(auth.ActionCreate, auth.ResourceCars) {
		return ErrForbidden
	}
	car.ID = 0
	return v.mutate(ctx, "Successfully created car", "Failed to create car", func() error {
		return v.api.CreateCar(ctx, car)
	})
}

func (v *CarsView) Update(ctx context.Context, id int64, car backend.Car) error {
	if !v.policy.Can(auth.ActionEdit, auth.ResourceCars) {
		return ErrForbidden
	}
	car.ID = id
	return v.mutate(ctx, "Successfully updated car", "Failed to update car", func() error {
		return v.api.UpdateCar(ctx, id, car)
	})
}

// Delete removes a car. Nothing is sent unless confirmed is true.
func (v *CarsView) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !v.policy.Can(auth.ActionDelete, auth.ResourceCars) {
		return ErrForbidden
	}
	if !confirmed {
		return nil
	}
	return v.mutate(ctx, "Successfully deleted car", "Failed to delete car", func() error {
		return v.api.DeleteCar(ctx, id)
	})
}

func (v *CarsView) mutate(ctx context.Context, okMsg, failMsg string, call func() error) error {
	v.state.mu.Lock()
	defer v.state.mu.Unlock()
	if err := call(); err != nil {
		v.state.fail(ctx, failMsg, err)
		v.state.cars.reuse = true
		return err
	}
	v.state.notify(okMsg, NoticePositive)
	_ = v.refresh(ctx)
	v.state.cars.reuse = true
	return nil
}
