package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ConversationRepository persists the per-chat dialogue state.
type ConversationRepository interface {
	Get(ctx context.Context, chatID int64) (models.Conversation, error)
	// Save upserts the conversation keyed by chat id.
	Save(ctx context.Context, conversation *models.Conversation) error
	Clear(ctx context.Context, chatID int64) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository instantiates the repository.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Get(ctx context.Context, chatID int64) (models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&conversation).Error; err != nil {
		return models.Conversation{}, err
	}

	return conversation, nil
}

func (r *conversationRepository) Save(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			UpdateAll: true,
		}).
		Create(conversation).Error
}

func (r *conversationRepository) Clear(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&models.Conversation{}).Error
}
