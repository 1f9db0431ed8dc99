package order

import (
	"strings"
	"time"
)

// Filters is a conjunctive predicate over orders. A nil field is an absent
// clause and always matches.
type Filters struct {
	Status   *OrderStatus `json:"status,omitempty"`
	StoreID  *string      `json:"storeId,omitempty"`
	Search   *string      `json:"search,omitempty"`
	DateFrom *time.Time   `json:"dateFrom,omitempty"`
	DateTo   *time.Time   `json:"dateTo,omitempty"`
}

// IsEmpty reports whether no clause is set.
func (f Filters) IsEmpty() bool {
	return f.Status == nil && f.StoreID == nil && f.Search == nil && f.DateFrom == nil && f.DateTo == nil
}

// Merge overlays patch onto f. Non-nil patch fields win; a non-nil field
// holding the zero value clears that clause.
func (f Filters) Merge(patch Filters) Filters {
	out := f
	if patch.Status != nil {
		out.Status = nonEmptyStatus(*patch.Status)
	}
	if patch.StoreID != nil {
		out.StoreID = nonEmptyString(*patch.StoreID)
	}
	if patch.Search != nil {
		out.Search = nonEmptyString(*patch.Search)
	}
	if patch.DateFrom != nil {
		out.DateFrom = nonZeroTime(*patch.DateFrom)
	}
	if patch.DateTo != nil {
		out.DateTo = nonZeroTime(*patch.DateTo)
	}
	return out
}

// Matches evaluates the predicate against a single order.
func (f Filters) Matches(o Order) bool {
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.StoreID != nil && o.StoreID != *f.StoreID {
		return false
	}
	if f.DateFrom != nil && o.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && o.CreatedAt.After(*f.DateTo) {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		term := strings.ToLower(*f.Search)
		if !matchesSearch(o, term) {
			return false
		}
	}
	return true
}

func matchesSearch(o Order, term string) bool {
	if strings.Contains(strings.ToLower(o.ID), term) {
		return true
	}
	if strings.Contains(strings.ToLower(o.Store.Name), term) {
		return true
	}
	for _, p := range o.Products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			return true
		}
	}
	return false
}

// ApplyFilters returns the orders that satisfy every set clause, preserving
// input order.
func ApplyFilters(orders []Order, f Filters) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

func (f Filters) clone() Filters {
	out := Filters{}
	if f.Status != nil {
		s := *f.Status
		out.Status = &s
	}
	if f.StoreID != nil {
		s := *f.StoreID
		out.StoreID = &s
	}
	if f.Search != nil {
		s := *f.Search
		out.Search = &s
	}
	if f.DateFrom != nil {
		t := *f.DateFrom
		out.DateFrom = &t
	}
	if f.DateTo != nil {
		t := *f.DateTo
		out.DateTo = &t
	}
	return out
}

func nonEmptyStatus(s OrderStatus) *OrderStatus {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmptyString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
