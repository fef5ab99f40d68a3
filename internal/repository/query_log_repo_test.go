package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samriddhi-college/chatbot-api/internal/models"
)

func TestQueryLogRepositoryCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQueryLogRepository(db)

	entries := []models.QueryLog{
		{ReferenceID: "ref-1", Role: "guest", Intent: "document", Question: "q1", Denied: true, CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ReferenceID: "ref-2", Role: "teacher", Intent: "person", Question: "q2", CreatedAt: time.Now().Add(-time.Hour)},
		{ReferenceID: "ref-3", Role: "teacher", Intent: "document", Question: "q3", CreatedAt: time.Now()},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	listed, total, err := repo.List(context.Background(), QueryLogFilter{Role: "teacher"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "ref-3", listed[0].ReferenceID, "expected newest first")

	denied := true
	listed, total, err = repo.List(context.Background(), QueryLogFilter{Denied: &denied})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "ref-1", listed[0].ReferenceID)

	listed, total, err = repo.List(context.Background(), QueryLogFilter{Intent: "document", PageSize: 1, Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, listed, 1)
	require.Equal(t, "ref-1", listed[0].ReferenceID)
}
