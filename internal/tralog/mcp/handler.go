package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

// Handler turns tool calls into service calls. Failures are reported as tool
// results with IsError set, never as protocol errors.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// WeeklyStatsInput is the input for get_weekly_stats.
type WeeklyStatsInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose workouts are aggregated"`
	Week   string `json:"week,omitempty" jsonschema:"Any day (YYYY-MM-DD) of the wanted week; the current week if empty"`
}

// UserInput is the input for tools that only need a user.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user"`
}

// WorkoutsInput is the input for list_workouts.
type WorkoutsInput struct {
	UserID   string `json:"user_id" jsonschema:"Id of the user"`
	FromDate string `json:"from_date" jsonschema:"Start date (YYYY-MM-DD), included"`
	ToDate   string `json:"to_date" jsonschema:"End date (YYYY-MM-DD), included"`
}

func (h *Handler) GetWeeklyStatsTool() func(context.Context, *mcp.CallToolRequest, WeeklyStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeeklyStatsInput) (*mcp.CallToolResult, any, error) {
		report, err := h.service.WeeklyStats(ctx, in.UserID, in.Week)
		if err != nil {
			return errorResult("Error computing weekly stats: " + err.Error()), nil, nil
		}
		return jsonResult(report), nil, nil
	}
}

func (h *Handler) GetDashboardTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		dashboard, err := h.service.Dashboard(ctx, in.UserID)
		if err != nil {
			return errorResult("Error computing dashboard: " + err.Error()), nil, nil
		}
		return jsonResult(dashboard), nil, nil
	}
}

func (h *Handler) ListWorkoutsTool() func(context.Context, *mcp.CallToolRequest, WorkoutsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WorkoutsInput) (*mcp.CallToolResult, any, error) {
		workouts, err := h.service.Workouts(ctx, in.UserID, in.FromDate, in.ToDate)
		if err != nil {
			return errorResult("Error listing workouts: " + err.Error()), nil, nil
		}
		return jsonResult(workouts), nil, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Errorf("mcp, encode tool response: %s", err)
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}
