package estimate

import (
	"strings"

	"github.com/iwvelando/tuition-calculator/pkg/constants"
)

// Level is the level of study.
type Level string

// Residency is the tuition residency status.
type Residency string

// Housing is where the student lives while enrolled.
type Housing string

// Term is the enrollment period being estimated.
type Term string

const (
	Undergraduate Level = constants.LevelUndergraduate
	Graduate      Level = constants.LevelGraduate

	Resident    Residency = constants.ResidencyResident
	Nonresident Residency = constants.ResidencyNonresident

	Home      Housing = constants.HousingHome
	Dorm      Housing = constants.HousingDorm
	OffCampus Housing = constants.HousingOffCampus

	SingleSemester Term = constants.TermSingle
	FallAndSpring  Term = constants.TermFallSpring
)

// Selection is the set of choices a quote is computed for. It is a plain
// value; callers build a new one for every change.
type Selection struct {
	Level        Level     `json:"level" yaml:"level" validate:"required,oneof=undergraduate graduate"`
	Residency    Residency `json:"residency" yaml:"residency" validate:"required,oneof=resident nonresident"`
	Hours        int       `json:"hours" yaml:"hours" validate:"min=1,max=21"`
	Housing      Housing   `json:"housing" yaml:"housing" validate:"required,oneof=home dorm 'off campus'"`
	Term         Term      `json:"term" yaml:"term" validate:"required,oneof=single fallspring"`
	SelectedHall string    `json:"selectedHall,omitempty" yaml:"selectedHall,omitempty" validate:"required_if=Housing dorm"`
	SelectedMeal string    `json:"selectedMeal,omitempty" yaml:"selectedMeal,omitempty"`
}

// DefaultSelection mirrors the initial state of the calculator form.
func DefaultSelection() Selection {
	return Selection{
		Level:        Undergraduate,
		Residency:    Resident,
		Hours:        constants.DefaultHours,
		Housing:      Home,
		Term:         FallAndSpring,
		SelectedMeal: constants.MealPlanNone,
	}
}

// Normalized lowercases the enumerations and fills the meal plan default.
// Hall and meal names keep their casing for display.
func (s Selection) Normalized() Selection {
	s.Level = Level(normalize(string(s.Level)))
	s.Residency = Residency(normalize(string(s.Residency)))
	s.Housing = Housing(normalize(string(s.Housing)))
	s.Term = Term(normalize(string(s.Term)))
	s.SelectedHall = strings.TrimSpace(s.SelectedHall)
	s.SelectedMeal = strings.TrimSpace(s.SelectedMeal)
	if s.SelectedMeal == "" {
		s.SelectedMeal = constants.MealPlanNone
	}
	return s
}

// IsDorm reports whether hall and meal choices apply.
func (s Selection) IsDorm() bool {
	return s.Housing == Dorm
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
