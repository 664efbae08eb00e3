// Package constants provides shared constants for the tuition-calculator application.
package constants

// Selection enumerations as they arrive from the presentation layer.
const (
	LevelUndergraduate = "undergraduate"
	LevelGraduate      = "graduate"

	ResidencyResident    = "resident"
	ResidencyNonresident = "nonresident"

	HousingHome      = "home"
	HousingDorm      = "dorm"
	HousingOffCampus = "off campus"

	TermSingle     = "single"
	TermFallSpring = "fallspring"

	// MealPlanNone is the sentinel meal plan that never costs anything.
	MealPlanNone = "none"
)

// Credit hour bounds accepted at the presentation boundary.
const (
	MinHours     = 1
	MaxHours     = 21
	DefaultHours = 15
)

// Financial constants
const (
	// SemestersPerYear is the number of billed semesters in a fall-and-spring term
	SemestersPerYear = 2
)

// Normalized (lowercase) column names of the rate feeds.
const (
	ColumnHours              = "hours"
	ColumnTotal              = "total"
	ColumnHousingOption      = "housing option"
	ColumnFoodAndHousing     = "food and housing"
	ColumnTransportation     = "transportation"
	ColumnMiscellaneous      = "miscellaneous"
	ColumnUndergraduateBooks = "undergraduate books"
	ColumnGraduateBooks      = "graduate books"
	ColumnResidenceHall      = "residence hall"
	ColumnHallRate           = "2 suite"
	ColumnMealPlan           = "meal plan"
	ColumnMealRate           = "rate"
)

// Rate feed file names.
const (
	FileAdditionalCosts = "additional-costs.csv"
	FileResidenceHalls  = "residence-hall-rates.csv"
	FileMealPlans       = "meal-plan-rates.csv"
)

// TuitionFile returns the feed file name for a level/residency pair,
// e.g. "graduate-nonresident.csv".
func TuitionFile(level, residency string) string {
	return level + "-" + residency + ".csv"
}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Data source constants
const (
	// DataSourceDir reads the feeds from a local directory
	DataSourceDir = "dir"

	// DataSourceHTTP fetches the feeds from a base URL
	DataSourceHTTP = "http"

	// DefaultDataDirectory is used when no directory is configured
	DefaultDataDirectory = "data"

	// DefaultFetchTimeoutSeconds bounds a full reload of all feeds
	DefaultFetchTimeoutSeconds = 30
)

// Display constants
const (
	// DefaultLocale is the BCP 47 tag used for thousands grouping
	DefaultLocale = "en-US"

	// CurrencySymbol prefixes every displayed amount
	CurrencySymbol = "$"

	// NotAvailable is shown in place of a total that cannot be computed
	NotAvailable = "N/A"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultMetricsNamespace prefixes every exported Prometheus metric
	DefaultMetricsNamespace = "tuition_calculator"
)
