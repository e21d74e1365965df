package mcp

import (
	"context"

	"github.com/claude/koifit/internal/models"
	"github.com/claude/koifit/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. Both *workout.Service
// (local) and HTTPClient (remote via the JSON API) satisfy this interface.
type DataSource interface {
	ListDays(ctx context.Context) ([]models.Day, error)
	ActiveSession(ctx context.Context) (*models.ActiveSession, error)
	View(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	Previous(ctx context.Context, slotID, exerciseID int64) (*models.PreviousAttempt, error)
}

// Compile-time check: *workout.Service satisfies DataSource.
var _ DataSource = (*workout.Service)(nil)
