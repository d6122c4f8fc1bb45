package core

import (
	"context"
	"fmt"
	"os"

	"github.com/pulsegrid/afterglow/core/prior"
	"github.com/pulsegrid/afterglow/internal/contract"
)

// ExecutePriors writes the default prior set for a model as YAML, suitable
// as a starting point for --prior-file. With no model it lists the models
// that carry default priors. It serves as the main entry point for the
// 'priors' command.
func ExecutePriors(_ context.Context, cfg *contract.Config) error {
	if cfg.Model == "" {
		fmt.Println("Models with default priors:")
		for _, name := range prior.DefaultModels() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	set, err := prior.Defaults(cfg.Model)
	if err != nil {
		return err
	}

	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := set.Write(file); err != nil {
		return err
	}
	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 Wrote default %s priors to %s\n", cfg.Model, cfg.OutputFile)
	}
	return nil
}
