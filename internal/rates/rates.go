// Package rates holds the ingested rate tables and the lookups the cost
// engine runs against them.
package rates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrNotFound is wrapped by every lookup that has no matching row.
var ErrNotFound = errors.New("rate not found")

// Repository is the read-only view the cost engine consumes.
type Repository interface {
	LookupTuition(level, residency string, hours int) (TuitionRow, error)
	LookupAncillary(housing string) (AncillaryRow, error)
	LookupHall(name string) (HallRow, error)
	LookupMealPlan(name string) (MealRow, error)
}

// Category is one fee column of a tuition row.
type Category struct {
	Name   string
	Amount decimal.Decimal
}

// TuitionRow is the single-semester tuition for one hour count. Total is the
// declared total column; Categories are informational only.
type TuitionRow struct {
	Hours      int
	Categories []Category
	Total      decimal.Decimal
}

// TuitionTable holds the rows of one level/residency feed.
type TuitionTable struct {
	Level     string
	Residency string
	Rows      []TuitionRow
}

// AncillaryRow is the non-tuition estimate for one housing option.
type AncillaryRow struct {
	Housing            string
	FoodAndHousing     decimal.Decimal
	Transportation     decimal.Decimal
	Miscellaneous      decimal.Decimal
	UndergraduateBooks decimal.Decimal
	GraduateBooks      decimal.Decimal
}

// Books returns the books figure for the given level of study.
func (r AncillaryRow) Books(level string) decimal.Decimal {
	if normalizeKey(level) == constants.LevelGraduate {
		return r.GraduateBooks
	}
	return r.UndergraduateBooks
}

// HallRow is the per-semester rate of a residence hall.
type HallRow struct {
	Name string
	Rate decimal.Decimal
}

// MealRow is the per-semester rate of a meal plan.
type MealRow struct {
	Name string
	Rate decimal.Decimal
}

type tuitionKey struct {
	level     string
	residency string
	hours     int
}

// Snapshot is an immutable, fully loaded set of rate tables.
type Snapshot struct {
	tuition   map[tuitionKey]TuitionRow
	ancillary map[string]AncillaryRow
	halls     map[string]HallRow
	meals     map[string]MealRow
	hallOrder []string
	mealOrder []string
}

// NewSnapshot indexes the given tables. Duplicate keys and negative hall
// rates are rejected.
func NewSnapshot(tuition []TuitionTable, ancillary []AncillaryRow, halls []HallRow, meals []MealRow) (*Snapshot, error) {
	s := &Snapshot{
		tuition:   make(map[tuitionKey]TuitionRow),
		ancillary: make(map[string]AncillaryRow, len(ancillary)),
		halls:     make(map[string]HallRow, len(halls)),
		meals:     make(map[string]MealRow, len(meals)),
	}

	for _, table := range tuition {
		for _, row := range table.Rows {
			key := tuitionKey{normalizeKey(table.Level), normalizeKey(table.Residency), row.Hours}
			if _, exists := s.tuition[key]; exists {
				return nil, fmt.Errorf("duplicate tuition row for %s-%s at %d hours", key.level, key.residency, key.hours)
			}
			s.tuition[key] = row
		}
	}

	for _, row := range ancillary {
		key := normalizeKey(row.Housing)
		if _, exists := s.ancillary[key]; exists {
			return nil, fmt.Errorf("duplicate ancillary row for housing option %q", row.Housing)
		}
		s.ancillary[key] = row
	}

	for _, row := range halls {
		key := normalizeKey(row.Name)
		if _, exists := s.halls[key]; exists {
			return nil, fmt.Errorf("duplicate residence hall %q", row.Name)
		}
		if row.Rate.IsNegative() {
			return nil, fmt.Errorf("residence hall %q has negative rate %s", row.Name, row.Rate)
		}
		s.halls[key] = row
		s.hallOrder = append(s.hallOrder, row.Name)
	}

	for _, row := range meals {
		key := normalizeKey(row.Name)
		if key == constants.MealPlanNone {
			continue
		}
		if _, exists := s.meals[key]; exists {
			return nil, fmt.Errorf("duplicate meal plan %q", row.Name)
		}
		s.meals[key] = row
		s.mealOrder = append(s.mealOrder, row.Name)
	}

	return s, nil
}

// LookupTuition finds the row for a level, residency and hour count.
func (s *Snapshot) LookupTuition(level, residency string, hours int) (TuitionRow, error) {
	row, ok := s.tuition[tuitionKey{normalizeKey(level), normalizeKey(residency), hours}]
	if !ok {
		return TuitionRow{}, fmt.Errorf("tuition for %s-%s at %d hours: %w", level, residency, hours, ErrNotFound)
	}
	return row, nil
}

// LookupAncillary finds the ancillary cost row for a housing option.
func (s *Snapshot) LookupAncillary(housing string) (AncillaryRow, error) {
	row, ok := s.ancillary[normalizeKey(housing)]
	if !ok {
		return AncillaryRow{}, fmt.Errorf("ancillary costs for housing %q: %w", housing, ErrNotFound)
	}
	return row, nil
}

// LookupHall finds a residence hall by name.
func (s *Snapshot) LookupHall(name string) (HallRow, error) {
	row, ok := s.halls[normalizeKey(name)]
	if !ok {
		return HallRow{}, fmt.Errorf("residence hall %q: %w", name, ErrNotFound)
	}
	return row, nil
}

// LookupMealPlan finds a meal plan by name. "none" always resolves to a
// zero-rate plan whatever the table holds.
func (s *Snapshot) LookupMealPlan(name string) (MealRow, error) {
	key := normalizeKey(name)
	if key == constants.MealPlanNone {
		return MealRow{Name: constants.MealPlanNone, Rate: decimal.Zero}, nil
	}
	row, ok := s.meals[key]
	if !ok {
		return MealRow{}, fmt.Errorf("meal plan %q: %w", name, ErrNotFound)
	}
	return row, nil
}

// Halls lists residence hall names in feed order.
func (s *Snapshot) Halls() []string {
	return append([]string(nil), s.hallOrder...)
}

// MealPlans lists meal plan names in feed order, excluding "none".
func (s *Snapshot) MealPlans() []string {
	return append([]string(nil), s.mealOrder...)
}

// TuitionRows reports how many tuition rows are indexed.
func (s *Snapshot) TuitionRows() int {
	return len(s.tuition)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
