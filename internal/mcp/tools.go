package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/koifit/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

var toolListDays = mcp.NewTool("list_days",
	mcp.WithDescription("List the training days (e.g. Upper 1, Lower 1) in rotation order."),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Return the unfinished workout session, if any, with its day label."),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Full detail of a session: every slot of its day with the exercise, prescription, logged sets and the previous finished attempt."),
	mcp.WithNumber("session_id", mcp.Required(), mcp.Description("Session ID")),
)

var toolGetPreviousAttempt = mcp.NewTool("get_previous_attempt",
	mcp.WithDescription("Most recent finished attempt at a slot with a given exercise, with its working sets (dropsets excluded)."),
	mcp.WithNumber("slot_id", mcp.Required(), mcp.Description("Slot ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
)

func (h *handlers) listDays(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.ds.ListDays(ctx)
	if err != nil {
		h.log.Error("mcp list_days", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(days)
}

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active, err := h.ds.ActiveSession(ctx)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if active == nil {
		return jsonResult(map[string]any{"active": false})
	}
	return jsonResult(map[string]any{
		"active":     true,
		"session_id": active.SessionID,
		"day_id":     active.DayID,
		"day_label":  active.DayLabel,
	})
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	detail, err := h.ds.View(ctx, int64(id))
	if errors.Is(err, workout.ErrNotFound) {
		return mcp.NewToolResultError("session not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(detail)
}

func (h *handlers) getPreviousAttempt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slotID, err := req.RequireInt("slot_id")
	if err != nil {
		return mcp.NewToolResultError("slot_id parameter is required"), nil
	}
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	prev, err := h.ds.Previous(ctx, int64(slotID), int64(exerciseID))
	if err != nil {
		h.log.Error("mcp get_previous_attempt", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if prev == nil {
		return jsonResult(map[string]any{"found": false})
	}
	return jsonResult(prev)
}

func (h *handlers) daysResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	days, err := h.ds.ListDays(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
