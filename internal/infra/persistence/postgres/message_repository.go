package postgres

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// messageRepository implements the repository.MessageRepository interface.
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository is the constructor for messageRepository.
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// Create persists a new message.
func (repo *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	messageM := fromMessageDomain(message)

	if err := repo.db.WithContext(ctx).Create(messageM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrConversationNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required message information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create message")
	}

	// Update the entity with generated values
	message.ID = messageM.ID
	message.CreatedAt = messageM.CreatedAt

	return nil
}

// FindByID retrieves a message by its unique ID.
func (repo *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var messageM model.MessageModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&messageM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}

		return nil, errors.Wrap(err, "failed to find message by id")
	}

	return toMessageDomain(&messageM), nil
}

// MarkRead stamps the read time of a message that has not been read yet.
func (repo *messageRepository) MarkRead(ctx context.Context, conversationID, id uuid.UUID, at time.Time) error {
	return repo.stamp(ctx, conversationID, id, "read_at", at)
}

// MarkDelivered stamps the delivery time of a message that has not been delivered yet.
func (repo *messageRepository) MarkDelivered(ctx context.Context, conversationID, id uuid.UUID, at time.Time) error {
	return repo.stamp(ctx, conversationID, id, "delivered_at", at)
}

func (repo *messageRepository) stamp(ctx context.Context, conversationID, id uuid.UUID, column string, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.MessageModel{}).
		Where("id = ? AND conversation_id = ?", id, conversationID).
		Where(column + " IS NULL").
		UpdateColumn(column, at)

	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to set message %s", column)
	}

	if result.RowsAffected > 0 {
		return nil
	}

	// Already stamped messages are left untouched; only a missing row is an error.
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.MessageModel{}).
		Where("id = ? AND conversation_id = ?", id, conversationID).
		Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check message existence")
	}
	if count == 0 {
		return repository.ErrMessageNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toMessageDomain converts a GORM MessageModel to a domain Message entity.
func toMessageDomain(data *model.MessageModel) *entity.Message {
	if data == nil {
		return nil
	}

	return &entity.Message{
		ID:             data.ID,
		ConversationID: data.ConversationID,
		SenderID:       data.SenderID,
		RecipientID:    data.RecipientID,
		Content: entity.MessageContent{
			Text:     data.Text,
			Type:     entity.MessageType(data.Type),
			ImageURL: data.ImageURL,
			Location: model.PointFromColumns(data.Latitude, data.Longitude),
			Address:  data.Address,
		},
		ReadAt:      data.ReadAt,
		DeliveredAt: data.DeliveredAt,
		CreatedAt:   data.CreatedAt,
	}
}

// fromMessageDomain converts a domain Message entity to a GORM MessageModel.
func fromMessageDomain(data *entity.Message) *model.MessageModel {
	if data == nil {
		return nil
	}

	lat, lng := model.PointColumns(data.Content.Location)
	messageType := data.Content.Type
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	return &model.MessageModel{
		ID:             data.ID,
		ConversationID: data.ConversationID,
		SenderID:       data.SenderID,
		RecipientID:    data.RecipientID,
		Type:           string(messageType),
		Text:           data.Content.Text,
		ImageURL:       data.Content.ImageURL,
		Latitude:       lat,
		Longitude:      lng,
		Address:        data.Content.Address,
		ReadAt:         data.ReadAt,
		DeliveredAt:    data.DeliveredAt,
		CreatedAt:      data.CreatedAt,
	}
}
