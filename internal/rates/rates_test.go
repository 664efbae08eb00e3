package rates

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(
		[]TuitionTable{
			{
				Level:     "undergraduate",
				Residency: "resident",
				Rows: []TuitionRow{
					{Hours: 12, Total: d("2500.00"), Categories: []Category{{Name: "tuition", Amount: d("2000.00")}, {Name: "fees", Amount: d("500.00")}}},
					{Hours: 15, Total: d("3000.00"), Categories: []Category{{Name: "tuition", Amount: d("2400.00")}, {Name: "fees", Amount: d("600.00")}}},
				},
			},
			{
				Level:     "Graduate",
				Residency: "NonResident",
				Rows:      []TuitionRow{{Hours: 9, Total: d("5100.00")}},
			},
		},
		[]AncillaryRow{
			{Housing: "home", FoodAndHousing: d("2000"), Transportation: d("500"), Miscellaneous: d("300"), UndergraduateBooks: d("400"), GraduateBooks: d("600")},
			{Housing: "Off Campus", FoodAndHousing: d("9000")},
		},
		[]HallRow{{Name: "Lucio Hall (Co-ed)", Rate: d("2500")}, {Name: "Turner Hall", Rate: d("2100")}},
		[]MealRow{{Name: "Plan A", Rate: d("1200")}, {Name: "none", Rate: d("999")}},
	)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func TestLookupTuition(t *testing.T) {
	snap := testSnapshot(t)

	row, err := snap.LookupTuition("undergraduate", "resident", 15)
	if err != nil {
		t.Fatalf("LookupTuition() error = %v", err)
	}
	if !row.Total.Equal(d("3000")) {
		t.Errorf("expected total 3000, got %s", row.Total)
	}
	if len(row.Categories) != 2 || row.Categories[0].Name != "tuition" {
		t.Errorf("expected categories in feed order, got %+v", row.Categories)
	}

	if _, err := snap.LookupTuition("GRADUATE", "nonresident", 9); err != nil {
		t.Errorf("lookup should ignore key casing: %v", err)
	}

	_, err = snap.LookupTuition("undergraduate", "resident", 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupAncillary(t *testing.T) {
	snap := testSnapshot(t)

	row, err := snap.LookupAncillary("off campus")
	if err != nil {
		t.Fatalf("LookupAncillary() error = %v", err)
	}
	if !row.FoodAndHousing.Equal(d("9000")) {
		t.Errorf("expected 9000, got %s", row.FoodAndHousing)
	}

	if _, err := snap.LookupAncillary("dorm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for dorm, got %v", err)
	}
}

func TestAncillaryBooks(t *testing.T) {
	row := AncillaryRow{UndergraduateBooks: d("400"), GraduateBooks: d("600")}
	if !row.Books("undergraduate").Equal(d("400")) {
		t.Errorf("undergraduate books mismatch")
	}
	if !row.Books("graduate").Equal(d("600")) {
		t.Errorf("graduate books mismatch")
	}
}

func TestLookupHallAndMeal(t *testing.T) {
	snap := testSnapshot(t)

	hall, err := snap.LookupHall("lucio hall (co-ed)")
	if err != nil {
		t.Fatalf("LookupHall() error = %v", err)
	}
	if hall.Name != "Lucio Hall (Co-ed)" || !hall.Rate.Equal(d("2500")) {
		t.Errorf("unexpected hall %+v", hall)
	}
	if _, err := snap.LookupHall("Missing Hall"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	meal, err := snap.LookupMealPlan("Plan A")
	if err != nil || !meal.Rate.Equal(d("1200")) {
		t.Errorf("unexpected meal %+v, %v", meal, err)
	}
	if _, err := snap.LookupMealPlan("Plan Z"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupMealPlanNoneIsAlwaysZero(t *testing.T) {
	snap := testSnapshot(t)

	for _, name := range []string{"none", "None", " NONE "} {
		meal, err := snap.LookupMealPlan(name)
		if err != nil {
			t.Fatalf("LookupMealPlan(%q) error = %v", name, err)
		}
		if !meal.Rate.IsZero() {
			t.Errorf("LookupMealPlan(%q) rate = %s, expected 0", name, meal.Rate)
		}
	}
}

func TestOptionLists(t *testing.T) {
	snap := testSnapshot(t)

	halls := snap.Halls()
	if len(halls) != 2 || halls[0] != "Lucio Hall (Co-ed)" || halls[1] != "Turner Hall" {
		t.Errorf("unexpected halls %v", halls)
	}
	meals := snap.MealPlans()
	if len(meals) != 1 || meals[0] != "Plan A" {
		t.Errorf("unexpected meal plans %v", meals)
	}

	halls[0] = "mutated"
	if snap.Halls()[0] != "Lucio Hall (Co-ed)" {
		t.Errorf("Halls() must return a copy")
	}
	if snap.TuitionRows() != 3 {
		t.Errorf("expected 3 tuition rows, got %d", snap.TuitionRows())
	}
}

func TestNewSnapshotRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name      string
		tuition   []TuitionTable
		ancillary []AncillaryRow
		halls     []HallRow
		meals     []MealRow
	}{
		{
			name: "duplicate tuition hours",
			tuition: []TuitionTable{{Level: "graduate", Residency: "resident", Rows: []TuitionRow{
				{Hours: 3, Total: d("1")}, {Hours: 3, Total: d("2")},
			}}},
		},
		{
			name:      "duplicate housing option",
			ancillary: []AncillaryRow{{Housing: "home"}, {Housing: "HOME"}},
		},
		{
			name:  "duplicate hall",
			halls: []HallRow{{Name: "A", Rate: d("1")}, {Name: "a", Rate: d("2")}},
		},
		{
			name:  "negative hall rate",
			halls: []HallRow{{Name: "A", Rate: d("-1")}},
		},
		{
			name:  "duplicate meal plan",
			meals: []MealRow{{Name: "Plan A"}, {Name: "plan a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSnapshot(tt.tuition, tt.ancillary, tt.halls, tt.meals); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
