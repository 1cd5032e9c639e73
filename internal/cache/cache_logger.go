package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// Stats keys
const (
	OverviewStatsKey = "overview"
	GradesStatsKey   = "grades"
)

func AssignmentStatsKey(assignmentID uint) string {
	return fmt.Sprintf("assignment:%d", assignmentID)
}

// InvalidateAssignmentStats drops every cached statistic that includes the
// given assignment.
func InvalidateAssignmentStats(ctx context.Context, cm *CacheManager, assignmentID uint) {
	SafeDelete(ctx, cm.Stats, OverviewStatsKey, GradesStatsKey, AssignmentStatsKey(assignmentID))
}

// InvalidateAllStats drops every cached statistic, used when the set of
// students changes.
func InvalidateAllStats(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
