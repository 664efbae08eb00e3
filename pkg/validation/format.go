// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/tuition-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateDataSource checks if the data source is one of the supported kinds.
func ValidateDataSource(source string) error {
	if source != constants.DataSourceDir && source != constants.DataSourceHTTP {
		return fmt.Errorf("expected data source of %s or %s, got %s",
			constants.DataSourceDir, constants.DataSourceHTTP, source)
	}
	return nil
}
