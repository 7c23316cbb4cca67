package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "ollama", Model: "llama3.1:8b", Purpose: "quiz-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nquiz"},
		{Provider: "ollama", Model: "llama3.1:8b", Purpose: "quiz-gen", InputTokens: 120, OutputTokens: 70, LatencyMs: 400, Success: false, ErrorMessage: "timeout"},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "speech-grade", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "speech-grade", got[0].Purpose, "newest first")
	assert.Greater(t, got[0].Sequence, got[1].Sequence)

	quiz, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-gen"})
	require.NoError(t, err)
	assert.Len(t, quiz, 2)

	one, err := repo.GetLLMEvent(ctx, got[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "[user]\nquiz", one.RequestBody)
	assert.True(t, one.Success)

	_, err = repo.GetLLMEvent(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "quiz-gen", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 220, byPurpose[0].InputTokens)
	assert.Equal(t, int64(300), byPurpose[0].AvgLatencyMs)
	assert.Equal(t, 1, byPurpose[0].Failures)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.0-flash", byModel[0].Model)
}
