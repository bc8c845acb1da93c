package postgres

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// conversationRepository implements the repository.ConversationRepository interface.
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository is the constructor for conversationRepository.
func NewConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &conversationRepository{
		db: db,
	}
}

// FindByID retrieves a conversation with its participants.
func (repo *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversationM model.ConversationModel

	if err := repo.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&conversationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}

		return nil, errors.Wrap(err, "failed to find conversation by id")
	}

	return toConversationDomain(&conversationM), nil
}

// FindByParticipant lists the conversations userID takes part in, most recent first.
func (repo *conversationRepository) FindByParticipant(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Conversation, error) {
	var conversationModels []*model.ConversationModel

	query := repo.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", repo.db.
			Model(&model.ConversationParticipantModel{}).
			Select("conversation_id").
			Where("user_id = ?", userID))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Order("last_activity DESC").Find(&conversationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find conversations by participant")
	}

	conversations := make([]*entity.Conversation, 0, len(conversationModels))
	for _, conversationM := range conversationModels {
		conversations = append(conversations, toConversationDomain(conversationM))
	}

	return conversations, nil
}

// Touch records messageID as the latest message of the conversation.
func (repo *conversationRepository) Touch(ctx context.Context, id, messageID uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ConversationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_activity":   at,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to touch conversation")
	}

	if result.RowsAffected == 0 {
		return repository.ErrConversationNotFound
	}

	return nil
}

// IncrementUnreadCount adds one to the counter in a single statement, so concurrent
// senders never lose an increment.
func (repo *conversationRepository) IncrementUnreadCount(ctx context.Context, id, userID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ConversationParticipantModel{}).
		Where("conversation_id = ? AND user_id = ?", id, userID).
		UpdateColumn("unread_count", gorm.Expr("unread_count + 1"))

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to increment unread count")
	}

	if result.RowsAffected == 0 {
		return repository.ErrConversationNotFound
	}

	return nil
}

// SetUnreadCount overwrites the unread counter of userID in the conversation.
func (repo *conversationRepository) SetUnreadCount(ctx context.Context, id, userID uuid.UUID, count int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ConversationParticipantModel{}).
		Where("conversation_id = ? AND user_id = ?", id, userID).
		UpdateColumn("unread_count", count)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set unread count")
	}

	if result.RowsAffected == 0 {
		return repository.ErrConversationNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toConversationDomain converts a GORM ConversationModel to a domain Conversation entity.
func toConversationDomain(data *model.ConversationModel) *entity.Conversation {
	if data == nil {
		return nil
	}

	conversation := &entity.Conversation{
		ID:            data.ID,
		ListingID:     data.ListingID,
		LastMessageID: data.LastMessageID,
		LastActivity:  data.LastActivity,
		IsActive:      data.IsActive,
		Participants:  make([]uuid.UUID, 0, len(data.Participants)),
		UnreadCounts:  make(map[uuid.UUID]int, len(data.Participants)),
		CreatedAt:     data.CreatedAt,
	}
	for _, p := range data.Participants {
		conversation.Participants = append(conversation.Participants, p.UserID)
		conversation.UnreadCounts[p.UserID] = p.UnreadCount
	}

	return conversation
}
