package service

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is returned for a choropleth selection outside
// {orders, customers}.
var ErrInvalidSelection = errors.New("invalid choropleth selection")

// MapView is the state of the choropleth toggle.
type MapView string

const (
	MapOrders    MapView = "orders"
	MapCustomers MapView = "customers"
)

// InitialMapView is shown on first render.
const InitialMapView = MapOrders

func ParseMapView(s string) (MapView, error) {
	switch v := MapView(s); v {
	case MapOrders, MapCustomers:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSelection, s)
	}
}

// Title is the figure title for the view.
func (v MapView) Title() string {
	if v == MapCustomers {
		return "Customers Distribution by State"
	}
	return "Orders Distribution by State"
}

// Transition applies a selection. Any valid selection becomes the new state
// (selecting the current state is a no-op); an invalid one leaves current in
// place and returns ErrInvalidSelection.
func Transition(current MapView, requested string) (MapView, error) {
	next, err := ParseMapView(requested)
	if err != nil {
		return current, err
	}
	return next, nil
}
