package mcp_test

import (
	"context"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pulsegrid/afterglow/internal/contract"
	mcp_internal "github.com/pulsegrid/afterglow/internal/mcp"
	"github.com/pulsegrid/afterglow/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Unit:       schema.LuminosityUnit,
		Likelihood: schema.GaussianLikelihood,
		DataMode:   schema.LuminosityMode,
		Redshift:   math.NaN(),
		Walkers:    contract.DefaultWalkers,
		Steps:      contract.DefaultSteps,
		Burn:       contract.DefaultBurn,
		Thin:       1,
		Workers:    2,
		TimeStart:  0.1,
		TimeEnd:    100,
		TimePoints: 50,
	}
}

func TestMCPServerHandlers(t *testing.T) {
	// A nil manager is fine here because these requests fail validation
	// before any store access.
	var mgr contract.StoreManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)

	ctx := context.Background()

	t.Run("list_models returns registry", func(t *testing.T) {
		tool := s.GetTool("list_models")
		require.NotNil(t, tool, "Tool list_models should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: "list_models"},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "arnett")
		assert.Contains(t, text, "one_component_kilonova")
	})

	t.Run("list_models unknown type filter", func(t *testing.T) {
		tool := s.GetTool("list_models")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "list_models",
				Arguments: map[string]any{"type": "nonexistent"},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("evaluate_model missing model", func(t *testing.T) {
		tool := s.GetTool("evaluate_model")
		require.NotNil(t, tool, "Tool evaluate_model should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "evaluate_model",
				Arguments: map[string]any{"model": ""},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "model is required")
	})

	t.Run("evaluate_model invalid unit", func(t *testing.T) {
		tool := s.GetTool("evaluate_model")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "evaluate_model",
				Arguments: map[string]any{
					"model": "arnett",
					"unit":  "parsecs",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid unit")
	})

	t.Run("evaluate_model returns curve", func(t *testing.T) {
		tool := s.GetTool("evaluate_model")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "evaluate_model",
				Arguments: map[string]any{
					"model":  "arnett",
					"params": "mej=2,f_nickel=0.1",
					"points": 10.0,
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		require.False(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "\"model\": \"arnett\"")
		assert.Contains(t, text, "\"values\"")
	})

	t.Run("fit_transient missing data_file", func(t *testing.T) {
		tool := s.GetTool("fit_transient")
		require.NotNil(t, tool, "Tool fit_transient should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "fit_transient",
				Arguments: map[string]any{"model": "arnett"},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "data_file is required")
	})

	t.Run("fit_transient invalid likelihood", func(t *testing.T) {
		tool := s.GetTool("fit_transient")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "fit_transient",
				Arguments: map[string]any{
					"data_file":  "data.csv",
					"model":      "arnett",
					"likelihood": "poisson",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid likelihood")
	})
}
