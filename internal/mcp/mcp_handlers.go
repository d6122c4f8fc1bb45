package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pulsegrid/afterglow/core"
	"github.com/pulsegrid/afterglow/core/models"
	"github.com/pulsegrid/afterglow/internal/contract"
	"github.com/pulsegrid/afterglow/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// modelInfo is the JSON shape of one registry entry in tool responses.
type modelInfo struct {
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Description string             `json:"description"`
	Units       []string           `json:"units"`
	Params      []modelParamInfo   `json:"params"`
	Defaults    map[string]float64 `json:"defaults"`
}

type modelParamInfo struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

func (h *toolHandler) handleListModels(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeFilter := request.GetString("type", "")

	var out []modelInfo
	for _, m := range models.All() {
		if typeFilter != "" && string(m.Type) != typeFilter {
			continue
		}
		units := make([]string, len(m.Units))
		for i, u := range m.Units {
			units[i] = string(u)
		}
		params := make([]modelParamInfo, len(m.Params))
		for i, p := range m.Params {
			params[i] = modelParamInfo{Name: p.Name, Unit: p.Unit, Description: p.Description}
		}
		out = append(out, modelInfo{
			Name:        m.Name,
			Type:        string(m.Type),
			Description: m.Description,
			Units:       units,
			Params:      params,
			Defaults:    m.DefaultParams(),
		})
	}

	if len(out) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no models registered for type %q", typeFilter)), nil
	}

	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleEvaluateModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Model = request.GetString("model", "")
	if cfg.Model == "" {
		return mcp.NewToolResultError("model is required"), nil
	}

	if u := request.GetString("unit", ""); u != "" {
		cfg.Unit = schema.OutputUnit(u)
		if _, ok := schema.ValidOutputUnits[cfg.Unit]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid unit %q", u)), nil
		}
	}

	if p := request.GetString("params", ""); p != "" {
		params, err := contract.ParseParamList(p)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid params: %v", err)), nil
		}
		cfg.EvalParams = params
	}

	if b := request.GetString("band", ""); b != "" {
		cfg.Bands = []string{b}
	}
	if z := request.GetFloat("redshift", math.NaN()); !math.IsNaN(z) {
		cfg.Redshift = z
	}
	if v := request.GetFloat("tstart", math.NaN()); !math.IsNaN(v) {
		cfg.TimeStart = v
	}
	if v := request.GetFloat("tend", math.NaN()); !math.IsNaN(v) {
		cfg.TimeEnd = v
	}
	if n := request.GetInt("points", 0); n > 0 {
		cfg.TimePoints = n
	}
	if cfg.TimePoints < 2 {
		return mcp.NewToolResultError("points must be at least 2"), nil
	}
	if cfg.TimeEnd <= cfg.TimeStart {
		return mcp.NewToolResultError("tend must be greater than tstart"), nil
	}

	result, err := core.GetEvalResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"model":  result.Model,
		"unit":   string(result.Unit),
		"params": result.Params,
		"time":   result.Time,
		"values": result.Values,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleFitTransient(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.DataFile = request.GetString("data_file", "")
	if cfg.DataFile == "" {
		return mcp.NewToolResultError("data_file is required"), nil
	}
	cfg.Model = request.GetString("model", "")
	if cfg.Model == "" {
		return mcp.NewToolResultError("model is required"), nil
	}

	if n := request.GetString("name", ""); n != "" {
		cfg.TransientName = n
	}
	if m := request.GetString("data_mode", ""); m != "" {
		cfg.DataMode = schema.DataMode(m)
		if _, ok := schema.ValidDataModes[cfg.DataMode]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid data_mode %q", m)), nil
		}
	}
	if l := request.GetString("likelihood", ""); l != "" {
		cfg.Likelihood = schema.LikelihoodKind(l)
		if _, ok := schema.ValidLikelihoods[cfg.Likelihood]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid likelihood %q", l)), nil
		}
	}
	if b := request.GetString("bands", ""); b != "" {
		var bands []string
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				bands = append(bands, part)
			}
		}
		cfg.Bands = bands
	}
	if z := request.GetFloat("redshift", math.NaN()); !math.IsNaN(z) {
		cfg.Redshift = z
	}
	if w := request.GetInt("walkers", 0); w > 0 {
		cfg.Walkers = w
	}
	if s := request.GetInt("steps", 0); s > 0 {
		cfg.Steps = s
	}
	if b := request.GetInt("burn", -1); b >= 0 {
		cfg.Burn = b
	}

	// Keep tool responses compact
	cfg.PredictiveDraws = 0
	cfg.SamplesFile = ""

	result, err := core.GetFitResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fit failed: %v", err)), nil
	}

	type paramOut struct {
		Name    string  `json:"name"`
		Median  float64 `json:"median"`
		Lower   float64 `json:"lower"`
		Upper   float64 `json:"upper"`
		MaxLike float64 `json:"max_like"`
	}
	params := make([]paramOut, len(result.Params))
	for i, p := range result.Params {
		params[i] = paramOut{Name: p.Name, Median: p.Median, Lower: p.Lower, Upper: p.Upper, MaxLike: p.MaxLike}
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"transient":        result.Transient,
		"model":            result.Model,
		"likelihood":       string(result.Likelihood),
		"data_mode":        string(result.DataMode),
		"points":           result.Points,
		"walkers":          result.Walkers,
		"steps":            result.Steps,
		"burn":             result.Burn,
		"acceptance":       result.Acceptance,
		"acceptance_label": contract.GetPlainLabel(result.Acceptance),
		"max_log_like":     result.MaxLogLike,
		"draws":            len(result.Samples),
		"params":           params,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
