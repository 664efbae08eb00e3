// Package estimate computes cost-of-attendance quotes from a Selection and a
// rate repository.
package estimate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/mathutil"
	"github.com/iwvelando/tuition-calculator/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrIncomplete means no tuition row matches the selection, so no total can
// be shown.
var ErrIncomplete = errors.New("no tuition rate for selection")

// Quote is the itemized estimate for one Selection. Amounts cover the
// selected term.
type Quote struct {
	Selection         Selection
	TuitionTotal      decimal.Decimal
	TuitionByCategory []rates.Category
	HallName          string
	HallCost          decimal.Decimal
	MealName          string
	MealCost          decimal.Decimal
	FoodAndHousing    decimal.Decimal
	Transportation    decimal.Decimal
	Miscellaneous     decimal.Decimal
	Books             decimal.Decimal
	DirectTotal       decimal.Decimal
	IndirectTotal     decimal.Decimal
	GrandTotal        decimal.Decimal
}

// Equal compares two quotes by value.
func (q Quote) Equal(o Quote) bool {
	if q.Selection != o.Selection || q.HallName != o.HallName || q.MealName != o.MealName {
		return false
	}
	if len(q.TuitionByCategory) != len(o.TuitionByCategory) {
		return false
	}
	for i := range q.TuitionByCategory {
		if q.TuitionByCategory[i].Name != o.TuitionByCategory[i].Name ||
			!q.TuitionByCategory[i].Amount.Equal(o.TuitionByCategory[i].Amount) {
			return false
		}
	}
	pairs := [][2]decimal.Decimal{
		{q.TuitionTotal, o.TuitionTotal},
		{q.HallCost, o.HallCost},
		{q.MealCost, o.MealCost},
		{q.FoodAndHousing, o.FoodAndHousing},
		{q.Transportation, o.Transportation},
		{q.Miscellaneous, o.Miscellaneous},
		{q.Books, o.Books},
		{q.DirectTotal, o.DirectTotal},
		{q.IndirectTotal, o.IndirectTotal},
		{q.GrandTotal, o.GrandTotal},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}
	return true
}

// Validate checks a Selection at the presentation boundary.
func Validate(sel Selection) error {
	return validation.Struct(sel.Normalized())
}

// Compute builds the Quote for sel. Tuition rows are single-semester figures
// and are doubled for fall-and-spring. Ancillary rows are fall-and-spring
// figures and are halved for a single semester. Hall and meal rates are
// semester figures; their sum replaces the ancillary food-and-housing figure
// for dorm residents.
//
// A missing tuition row returns ErrIncomplete. Any other missing row counts
// as zero.
func Compute(logger *zap.Logger, sel Selection, repo rates.Repository) (Quote, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sel = sel.Normalized()
	single := sel.Term == SingleSemester

	row, err := repo.LookupTuition(string(sel.Level), string(sel.Residency), sel.Hours)
	if err != nil {
		logger.Debug("no tuition row for selection",
			zap.String("op", "estimate.Compute"),
			zap.String("level", string(sel.Level)),
			zap.String("residency", string(sel.Residency)),
			zap.Int("hours", sel.Hours),
		)
		return Quote{}, fmt.Errorf("%w: %w", ErrIncomplete, err)
	}

	tuitionForTerm := func(v decimal.Decimal) decimal.Decimal {
		if single {
			return v
		}
		return mathutil.Annualize(v)
	}
	yearForTerm := func(v decimal.Decimal) decimal.Decimal {
		if single {
			return mathutil.Semesterize(v)
		}
		return v
	}

	q := Quote{
		Selection:         sel,
		TuitionTotal:      tuitionForTerm(row.Total),
		TuitionByCategory: make([]rates.Category, 0, len(row.Categories)),
	}
	for _, c := range row.Categories {
		q.TuitionByCategory = append(q.TuitionByCategory, rates.Category{Name: c.Name, Amount: tuitionForTerm(c.Amount)})
	}

	ancillary, err := repo.LookupAncillary(string(sel.Housing))
	if err != nil {
		logger.Warn("ancillary costs missing, counting as zero",
			zap.String("op", "estimate.Compute"),
			zap.String("housing", string(sel.Housing)),
			zap.Error(err),
		)
		ancillary = rates.AncillaryRow{}
	}

	if sel.IsDorm() {
		hall, meal := dormRates(logger, sel, repo)
		q.HallName = sel.SelectedHall
		q.MealName = sel.SelectedMeal
		q.HallCost = yearForTerm(mathutil.Annualize(hall))
		q.MealCost = yearForTerm(mathutil.Annualize(meal))
		q.FoodAndHousing = yearForTerm(mathutil.Annualize(hall.Add(meal)))
	} else {
		q.FoodAndHousing = yearForTerm(ancillary.FoodAndHousing)
	}
	q.Transportation = yearForTerm(ancillary.Transportation)
	q.Miscellaneous = yearForTerm(ancillary.Miscellaneous)
	q.Books = yearForTerm(ancillary.Books(string(sel.Level)))

	q.DirectTotal, q.IndirectTotal = classify(q)
	q.GrandTotal = mathutil.Sum(q.TuitionTotal, q.FoodAndHousing, q.Transportation, q.Miscellaneous, q.Books)

	logger.Debug("computed quote",
		zap.String("op", "estimate.Compute"),
		zap.String("grandTotal", q.GrandTotal.String()),
		zap.String("directTotal", q.DirectTotal.String()),
		zap.String("indirectTotal", q.IndirectTotal.String()),
	)
	return q, nil
}

// classify splits a quote into costs paid to the institution and costs that
// are not. Food and housing is direct only for dorm residents.
func classify(q Quote) (direct, indirect decimal.Decimal) {
	direct = q.TuitionTotal
	indirect = mathutil.Sum(q.Transportation, q.Miscellaneous, q.Books)
	if q.Selection.IsDorm() {
		direct = direct.Add(q.FoodAndHousing)
	} else {
		indirect = indirect.Add(q.FoodAndHousing)
	}
	return direct, indirect
}

// dormRates resolves the semester hall and meal rates, counting anything
// missing as zero.
func dormRates(logger *zap.Logger, sel Selection, repo rates.Repository) (hall, meal decimal.Decimal) {
	hall, meal = decimal.Zero, decimal.Zero

	if sel.SelectedHall == "" {
		logger.Warn("dorm selected without a residence hall",
			zap.String("op", "estimate.dormRates"),
		)
	} else if row, err := repo.LookupHall(sel.SelectedHall); err != nil {
		logger.Warn("residence hall missing, counting as zero",
			zap.String("op", "estimate.dormRates"),
			zap.String("hall", sel.SelectedHall),
			zap.Error(err),
		)
	} else {
		hall = row.Rate
	}

	if strings.EqualFold(sel.SelectedMeal, constants.MealPlanNone) {
		return hall, meal
	}
	row, err := repo.LookupMealPlan(sel.SelectedMeal)
	if err != nil {
		logger.Warn("meal plan missing, counting as zero",
			zap.String("op", "estimate.dormRates"),
			zap.String("meal", sel.SelectedMeal),
			zap.Error(err),
		)
	} else {
		meal = row.Rate
	}

	return hall, meal
}
