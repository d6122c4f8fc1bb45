// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pulsegrid/afterglow/internal/contract"
)

// NewMCPServer initializes and configures the Afterglow MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Afterglow Transient Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_models ---
	s.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the registered transient light-curve models with their parameters and supported output units."),
		mcp.WithString("type", mcp.Description("Filter by transient class (supernova, kilonova, afterglow, tde, magnetar, generic).")),
	), h.handleListModels)

	// --- 2. Tool: evaluate_model ---
	s.AddTool(mcp.NewTool("evaluate_model",
		mcp.WithDescription("Evaluate a light-curve model over a time grid and return the curve."),
		mcp.WithString("model", mcp.Description("Model name from the registry."), mcp.Required()),
		mcp.WithString("unit", mcp.Description("Output unit (luminosity, flux, flux_density, magnitude). Defaults to 'luminosity'."), mcp.Enum("luminosity", "flux", "flux_density", "magnitude")),
		mcp.WithString("params", mcp.Description("Parameter overrides as 'name=value,name=value'. Unset parameters use the model defaults.")),
		mcp.WithString("band", mcp.Description("Observing band for flux_density or magnitude output (e.g. 'g', 'r').")),
		mcp.WithNumber("redshift", mcp.Description("Source redshift, needed for flux-like output.")),
		mcp.WithNumber("tstart", mcp.Description("Grid start time in days.")),
		mcp.WithNumber("tend", mcp.Description("Grid end time in days.")),
		mcp.WithNumber("points", mcp.Description("Number of grid points.")),
	), h.handleEvaluateModel)

	// --- 3. Tool: fit_transient ---
	s.AddTool(mcp.NewTool("fit_transient",
		mcp.WithDescription("Fit a light-curve model to a transient dataset with ensemble MCMC and return the posterior summary."),
		mcp.WithString("data_file", mcp.Description("Path to the transient CSV file."), mcp.Required()),
		mcp.WithString("model", mcp.Description("Model name from the registry."), mcp.Required()),
		mcp.WithString("name", mcp.Description("Transient name. Defaults to the file stem.")),
		mcp.WithString("data_mode", mcp.Description("Data mode of the file (luminosity, flux, flux_density, magnitude)."), mcp.Enum("luminosity", "flux", "flux_density", "magnitude")),
		mcp.WithString("likelihood", mcp.Description("Likelihood kind. Defaults to 'gaussian'."), mcp.Enum("gaussian", "gaussian_quadrature", "gaussian_upper_limits", "student_t")),
		mcp.WithString("bands", mcp.Description("Comma-separated active bands, or 'all'.")),
		mcp.WithNumber("redshift", mcp.Description("Source redshift, needed for flux-like data.")),
		mcp.WithNumber("walkers", mcp.Description("Number of ensemble walkers.")),
		mcp.WithNumber("steps", mcp.Description("Steps per walker.")),
		mcp.WithNumber("burn", mcp.Description("Burn-in steps discarded per walker.")),
	), h.handleFitTransient)

	return s
}

// StartMCPServer starts the Afterglow MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
