package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ParticipantRepository defines persistence operations for participants and
// their coin balances.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uint) (models.Participant, error)
	GetByChatID(ctx context.Context, chatID int64) (models.Participant, error)
	// ListRecipients returns every registered non-operator participant in id
	// ascending order. This is the fan-out population for dispatch and sweep.
	ListRecipients(ctx context.Context) ([]models.Participant, error)
	TopByCoins(ctx context.Context, limit int) ([]models.Participant, error)
	Count(ctx context.Context) (int64, error)
	TotalCoins(ctx context.Context) (int64, error)
	// AddCoins atomically adjusts the balance by delta, clamped at a floor of
	// zero, and returns the resulting balance. The adjustment is a single
	// guarded UPDATE so concurrent calls for the same participant serialize
	// at the storage layer.
	AddCoins(ctx context.Context, id uint, delta int) (int, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository instantiates a GORM-backed repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepository) GetByID(ctx context.Context, id uint) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, id).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) GetByChatID(ctx context.Context, chatID int64) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&participant).Error; err != nil {
		return models.Participant{}, err
	}

	return participant, nil
}

func (r *participantRepository) ListRecipients(ctx context.Context) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Where("is_operator = ?", false).
		Order("id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *participantRepository) TopByCoins(ctx context.Context, limit int) ([]models.Participant, error) {
	if limit <= 0 {
		limit = 5
	}

	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Where("is_operator = ?", false).
		Order("coins DESC").
		Order("id ASC").
		Limit(limit).
		Find(&participants).Error; err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *participantRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *participantRepository) TotalCoins(ctx context.Context) (int64, error) {
	var total *int64
	if err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Select("SUM(coins)").
		Scan(&total).Error; err != nil {
		return 0, err
	}

	if total == nil {
		return 0, nil
	}

	return *total, nil
}

func (r *participantRepository) AddCoins(ctx context.Context, id uint, delta int) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Participant{}).
			Where("id = ?", id).
			Update("coins", gorm.Expr("CASE WHEN coins + ? < 0 THEN 0 ELSE coins + ? END", delta, delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var participant models.Participant
		if err := tx.First(&participant, id).Error; err != nil {
			return err
		}

		balance = participant.Coins
		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}
