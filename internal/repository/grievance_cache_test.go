package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestCachedReaderWithoutClientPassesThrough(t *testing.T) {
	inner := NewMemoryGrievanceRepository()
	reader := NewCachedGrievanceReader(inner, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	g := &domain.Grievance{
		Title:        "Leaking hydrant",
		Description:  "Corner of Oak and 2nd.",
		RaisedBy:     "citizen-1",
		DepartmentID: "dept-1",
		Status:       domain.GrievanceStatusPending,
	}
	require.NoError(t, inner.Create(ctx, g))

	got, err := reader.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = reader.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Invalidate is a no-op without a client.
	reader.Invalidate(ctx, g.ID)

	listed, err := reader.ListWithFilter(ctx, GrievanceFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
