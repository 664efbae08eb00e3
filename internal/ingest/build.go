package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TuitionFeed is the parsed feed for one level/residency pair.
type TuitionFeed struct {
	Level     string
	Residency string
	Table     Table
}

// Feeds holds every parsed feed needed for a snapshot.
type Feeds struct {
	Tuition    []TuitionFeed
	Additional Table
	Halls      Table
	Meals      Table
}

// builder converts parsed feeds, logging each malformed amount it zeroes.
type builder struct {
	logger    *zap.Logger
	malformed int
}

// BuildSnapshot converts parsed feeds into a rate snapshot. Malformed amounts
// count as zero; a missing key column fails the build.
func BuildSnapshot(logger *zap.Logger, feeds Feeds) (*rates.Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{logger: logger}

	tuition := make([]rates.TuitionTable, 0, len(feeds.Tuition))
	for _, feed := range feeds.Tuition {
		table, err := b.tuition(feed)
		if err != nil {
			return nil, err
		}
		tuition = append(tuition, table)
	}

	ancillary, err := b.ancillary(feeds.Additional)
	if err != nil {
		return nil, err
	}
	halls, err := b.halls(feeds.Halls)
	if err != nil {
		return nil, err
	}
	meals, err := b.meals(feeds.Meals)
	if err != nil {
		return nil, err
	}

	if b.malformed > 0 {
		logger.Warn("malformed amounts counted as zero",
			zap.String("op", "ingest.BuildSnapshot"),
			zap.Int("count", b.malformed),
		)
	}

	return rates.NewSnapshot(tuition, ancillary, halls, meals)
}

func (b *builder) amount(feed string, row map[string]string, column string) decimal.Decimal {
	raw := row[column]
	amount, ok := mathutil.AmountOrZero(raw)
	if !ok {
		b.malformed++
		b.logger.Warn("malformed amount",
			zap.String("op", "ingest.amount"),
			zap.String("feed", feed),
			zap.String("column", column),
			zap.String("value", raw),
		)
	}
	return amount
}

// parseHours reads the leading integer of an hours cell, so "15", " 15 hrs"
// and "15.0" are all 15. A cell without leading digits is an error.
func parseHours(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	end := 0
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("hours %q has no leading digits", raw)
	}
	return strconv.Atoi(trimmed[:end])
}

func requireColumns(feed string, table Table, columns ...string) error {
	for _, c := range columns {
		if !table.Has(c) {
			return fmt.Errorf("feed %s is missing column %q", feed, c)
		}
	}
	return nil
}

func (b *builder) tuition(feed TuitionFeed) (rates.TuitionTable, error) {
	name := constants.TuitionFile(feed.Level, feed.Residency)
	if err := requireColumns(name, feed.Table, constants.ColumnHours, constants.ColumnTotal); err != nil {
		return rates.TuitionTable{}, err
	}

	var categories []string
	for _, h := range feed.Table.Header {
		if h != "" && h != constants.ColumnHours && h != constants.ColumnTotal {
			categories = append(categories, h)
		}
	}

	out := rates.TuitionTable{Level: feed.Level, Residency: feed.Residency}
	for _, row := range feed.Table.Rows {
		hours, err := parseHours(row[constants.ColumnHours])
		if err != nil {
			b.logger.Warn("skipping tuition row with unreadable hours",
				zap.String("op", "ingest.tuition"),
				zap.String("feed", name),
				zap.String("hours", row[constants.ColumnHours]),
			)
			continue
		}

		tr := rates.TuitionRow{
			Hours:      hours,
			Total:      b.amount(name, row, constants.ColumnTotal),
			Categories: make([]rates.Category, 0, len(categories)),
		}
		for _, c := range categories {
			tr.Categories = append(tr.Categories, rates.Category{Name: c, Amount: b.amount(name, row, c)})
		}
		out.Rows = append(out.Rows, tr)
	}
	return out, nil
}

func (b *builder) ancillary(table Table) ([]rates.AncillaryRow, error) {
	if err := requireColumns(constants.FileAdditionalCosts, table, constants.ColumnHousingOption); err != nil {
		return nil, err
	}

	out := make([]rates.AncillaryRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		out = append(out, rates.AncillaryRow{
			Housing:            row[constants.ColumnHousingOption],
			FoodAndHousing:     b.amount(constants.FileAdditionalCosts, row, constants.ColumnFoodAndHousing),
			Transportation:     b.amount(constants.FileAdditionalCosts, row, constants.ColumnTransportation),
			Miscellaneous:      b.amount(constants.FileAdditionalCosts, row, constants.ColumnMiscellaneous),
			UndergraduateBooks: b.amount(constants.FileAdditionalCosts, row, constants.ColumnUndergraduateBooks),
			GraduateBooks:      b.amount(constants.FileAdditionalCosts, row, constants.ColumnGraduateBooks),
		})
	}
	return out, nil
}

func (b *builder) halls(table Table) ([]rates.HallRow, error) {
	if err := requireColumns(constants.FileResidenceHalls, table, constants.ColumnResidenceHall, constants.ColumnHallRate); err != nil {
		return nil, err
	}

	out := make([]rates.HallRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		out = append(out, rates.HallRow{
			Name: row[constants.ColumnResidenceHall],
			Rate: b.amount(constants.FileResidenceHalls, row, constants.ColumnHallRate),
		})
	}
	return out, nil
}

func (b *builder) meals(table Table) ([]rates.MealRow, error) {
	if err := requireColumns(constants.FileMealPlans, table, constants.ColumnMealPlan, constants.ColumnMealRate); err != nil {
		return nil, err
	}

	out := make([]rates.MealRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		out = append(out, rates.MealRow{
			Name: row[constants.ColumnMealPlan],
			Rate: b.amount(constants.FileMealPlans, row, constants.ColumnMealRate),
		})
	}
	return out, nil
}
