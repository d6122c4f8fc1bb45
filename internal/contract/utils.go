package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Sampling quality label constants.
const (
	GoodValue     = "Good"     // Healthy acceptance fraction
	MarginalValue = "Marginal" // Chain usable but inspect the posterior
	PoorValue     = "Poor"     // Chain likely stuck or diffusing
)

// Color variables for console output.
var (
	GoodColor     = color.New(color.FgGreen)           // goodColor signals a trustworthy chain.
	MarginalColor = color.New(color.FgYellow)          // marginalColor signals standard caution.
	PoorColor     = color.New(color.FgRed, color.Bold) // poorColor signals an unusable chain.
)

// GetPlainLabel returns a plain text label grading the sampler's mean
// acceptance fraction. Stretch-move chains are healthiest between roughly
// 0.15 and 0.6. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(acceptance float64) string {
	switch {
	case acceptance >= 0.15 && acceptance <= 0.6:
		return GoodValue
	case acceptance >= 0.05 && acceptance <= 0.8:
		return MarginalValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(acceptance float64) string {
	text := GetPlainLabel(acceptance)

	switch text {
	case GoodValue:
		return GoodColor.Sprint(text)
	case MarginalValue:
		return MarginalColor.Sprint(text)
	default: // "Poor"
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the dataset cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".afterglow_cache.db"
	}
	return filepath.Join(homeDir, ".afterglow_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for the fit-run store.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".afterglow_runs.db"
	}
	return filepath.Join(homeDir, ".afterglow_runs.db")
}

// TruncateLabel truncates a label to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one
// character of content.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
