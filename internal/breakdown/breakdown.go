// Package breakdown turns a Quote into display-ready line items.
package breakdown

import (
	"strings"

	"github.com/iwvelando/tuition-calculator/internal/estimate"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Group titles and fixed labels.
const (
	DirectTitle   = "Direct Costs"
	IndirectTitle = "Indirect Costs"

	LabelTuitionAndFees = "Tuition & Fees"
	LabelRoomAndBoard   = "Room & Board"
	LabelFoodAndHousing = "Food & Housing"
	LabelNoMealPlan     = "No Meal Plan"
	LabelResidenceHall  = "Residence Hall"
	LabelTransportation = "Transportation"
	LabelMiscellaneous  = "Miscellaneous"
	LabelBooks          = "Books"
)

const (
	directDescription   = "Direct costs may include tuition and fees, and on-campus food and housing. These are all items you pay directly to the university."
	indirectDescription = "Indirect costs are expenses incurred while you attend but not paid to the university, such as transportation, personal expenses and books and supplies. These are estimates and your own costs may vary."
)

// Options control display formatting.
type Options struct {
	Locale language.Tag
}

// Line is one labelled amount.
type Line struct {
	Label    string `json:"label"`
	Amount   string `json:"amount"`
	Subtotal bool   `json:"subtotal,omitempty"`
}

// Group is a titled list of lines with a total.
type Group struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Lines       []Line `json:"lines"`
	TotalLabel  string `json:"totalLabel"`
	Total       string `json:"total"`
}

// DisplayBreakdown is the presentation tree for a quote.
type DisplayBreakdown struct {
	Available bool    `json:"available"`
	Headline  string  `json:"headline"`
	Groups    []Group `json:"groups,omitempty"`
}

// Format builds the breakdown for q. It reads nothing but q.
func Format(q estimate.Quote, opts Options) DisplayBreakdown {
	if opts.Locale == language.Und {
		opts.Locale = format.Locale(constants.DefaultLocale)
	}
	money := func(v decimal.Decimal) string {
		return format.WholeCurrency(v, opts.Locale)
	}

	direct := Group{
		Title:       DirectTitle,
		Description: directDescription,
		TotalLabel:  "Total " + DirectTitle,
		Total:       money(q.DirectTotal),
	}
	for _, c := range q.TuitionByCategory {
		direct.Lines = append(direct.Lines, Line{Label: categoryLabel(c.Name), Amount: money(c.Amount)})
	}
	direct.Lines = append(direct.Lines, Line{Label: LabelTuitionAndFees, Amount: money(q.TuitionTotal), Subtotal: true})

	indirect := Group{
		Title:       IndirectTitle,
		Description: indirectDescription,
		TotalLabel:  "Total " + IndirectTitle,
		Total:       money(q.IndirectTotal),
	}

	if q.Selection.IsDorm() {
		hallLabel := q.HallName
		if hallLabel == "" {
			hallLabel = LabelResidenceHall
		}
		mealLabel := q.MealName
		if mealLabel == "" || strings.EqualFold(mealLabel, constants.MealPlanNone) {
			mealLabel = LabelNoMealPlan
		}
		direct.Lines = append(direct.Lines,
			Line{Label: hallLabel, Amount: money(q.HallCost)},
			Line{Label: mealLabel, Amount: money(q.MealCost)},
			Line{Label: LabelRoomAndBoard, Amount: money(q.FoodAndHousing), Subtotal: true},
		)
	} else {
		indirect.Lines = append(indirect.Lines, Line{Label: LabelFoodAndHousing, Amount: money(q.FoodAndHousing), Subtotal: true})
	}

	indirect.Lines = append(indirect.Lines,
		Line{Label: LabelTransportation, Amount: money(q.Transportation)},
		Line{Label: LabelMiscellaneous, Amount: money(q.Miscellaneous)},
		Line{Label: LabelBooks, Amount: money(q.Books)},
	)

	return DisplayBreakdown{
		Available: true,
		Headline:  money(q.GrandTotal),
		Groups:    []Group{direct, indirect},
	}
}

// Unavailable is the breakdown shown when no tuition rate matches.
func Unavailable() DisplayBreakdown {
	return DisplayBreakdown{Headline: constants.NotAvailable}
}

func categoryLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
