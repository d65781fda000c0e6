package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

func TestConversationSaveUpsertsByChat(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	first := models.Conversation{
		ChatID: 42,
		State:  models.ConversationStateAwaitingFirstName,
		Data:   datatypes.JSONMap{},
	}
	require.NoError(t, repo.Save(ctx, &first))

	second := models.Conversation{
		ChatID: 42,
		State:  models.ConversationStateAwaitingLastName,
		Data:   datatypes.JSONMap{"first_name": "Aziz"},
	}
	require.NoError(t, repo.Save(ctx, &second))

	stored, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, models.ConversationStateAwaitingLastName, stored.State)
	require.Equal(t, "Aziz", stored.Data["first_name"])

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestConversationClearRemovesState(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	conversation := models.Conversation{
		ChatID: 43,
		State:  models.ConversationStateAwaitingPhoto,
	}
	require.NoError(t, repo.Save(ctx, &conversation))
	require.NoError(t, repo.Clear(ctx, 43))

	_, err := repo.Get(ctx, 43)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Clearing an absent conversation is not an error.
	require.NoError(t, repo.Clear(ctx, 43))
}
