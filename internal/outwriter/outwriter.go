// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFit prints a fit result using the configured output format.
func (ow *OutWriter) WriteFit(result *schema.FitResult, cfg *contract.Config, duration time.Duration) error {
	return WriteFitResult(result, cfg, duration)
}

// WriteEval prints an evaluation result using the configured output format.
func (ow *OutWriter) WriteEval(result *schema.EvalResult, cfg *contract.Config, duration time.Duration) error {
	return WriteEvalResult(result, cfg, duration)
}

// WriteModelList prints the model registry using the configured output format.
func (ow *OutWriter) WriteModelList(list []*models.Model, cfg *contract.Config) error {
	return WriteModels(list, cfg)
}
