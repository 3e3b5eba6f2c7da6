package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/resumeparser/pkg/resume"
	pgstore "github.com/artem13815/resumeparser/pkg/storage/postgres"
)

// Runs against a real database only when TEST_DATABASE_URL is set.
func TestResumeRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgstore.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo, err := NewResumeRepository(ctx, pool)
	require.NoError(t, err)

	name := "Jane Doe"
	rating := 7
	full, err := repo.InsertFull(ctx, resume.Record{
		Name:            &name,
		TechnicalSkills: []string{"Go"},
		Rating:          &rating,
		FileName:        "it-cv.pdf",
		RawText:         "text",
	})
	require.NoError(t, err)
	fb, err := repo.InsertFallback(ctx, "it-fb.pdf", "raw reply")
	require.NoError(t, err)
	assert.Greater(t, fb.ID, full.ID)

	got, err := repo.GetByID(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, &name, got.Name)
	assert.Equal(t, []string{"Go"}, got.TechnicalSkills)
	assert.Equal(t, []string{}, got.SoftSkills)
	assert.Equal(t, []resume.ProjectItem{}, got.Projects)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, fb.ID, list[0].ID)

	_, err = repo.GetByID(ctx, -1)
	assert.ErrorIs(t, err, resume.ErrNotFound)
}
