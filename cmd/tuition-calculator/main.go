package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/iwvelando/tuition-calculator/internal/breakdown"
	"github.com/iwvelando/tuition-calculator/internal/config"
	"github.com/iwvelando/tuition-calculator/internal/estimate"
	"github.com/iwvelando/tuition-calculator/internal/ingest"
	"github.com/iwvelando/tuition-calculator/internal/logging"
	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/format"
	"github.com/iwvelando/tuition-calculator/pkg/output"
	"github.com/iwvelando/tuition-calculator/pkg/validation"
	"go.uber.org/zap"
)

// selectionFlags carries the command line overrides for the default selection.
type selectionFlags struct {
	level     *string
	residency *string
	hours     *int
	housing   *string
	term      *string
	hall      *string
	meal      *string
}

func (f selectionFlags) apply(sel estimate.Selection) estimate.Selection {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "level":
			sel.Level = estimate.Level(*f.level)
		case "residency":
			sel.Residency = estimate.Residency(*f.residency)
		case "hours":
			sel.Hours = *f.hours
		case "housing":
			sel.Housing = estimate.Housing(*f.housing)
		case "term":
			sel.Term = estimate.Term(*f.term)
		case "hall":
			sel.SelectedHall = *f.hall
		case "meal":
			sel.SelectedMeal = *f.meal
		}
	})
	return sel.Normalized()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	overrides := selectionFlags{
		level:     flag.String("level", "", "level of study: undergraduate, graduate"),
		residency: flag.String("residency", "", "residency: resident, nonresident"),
		hours:     flag.Int("hours", constants.DefaultHours, "credit hours per semester"),
		housing:   flag.String("housing", "", "housing: home, dorm, off campus"),
		term:      flag.String("term", "", "term: single, fallspring"),
		hall:      flag.String("hall", "", "residence hall name when housing is dorm"),
		meal:      flag.String("meal", "", "meal plan name when housing is dorm"),
	}
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	sel := overrides.apply(conf.Defaults)
	if err := estimate.Validate(sel); err != nil {
		logger.Fatal("invalid selection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	store := rates.NewStore()
	loader := ingest.NewLoader(logger, conf.Data.NewSource(http.DefaultClient), store, conf.FetchTimeout())
	snap, err := loader.Load(context.Background())
	if err != nil {
		logger.Fatal("failed to load rate feeds",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	display := breakdown.Unavailable()
	quote, err := estimate.Compute(logger, sel, snap)
	switch {
	case errors.Is(err, estimate.ErrIncomplete):
		logger.Warn("no tuition rate for selection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	case err != nil:
		logger.Fatal("failed to compute estimate",
			zap.String("op", "main"),
			zap.Error(err),
		)
	default:
		display = breakdown.Format(quote, breakdown.Options{Locale: format.Locale(conf.Output.Locale)})
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, sel, display)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, display)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, sel, display)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
