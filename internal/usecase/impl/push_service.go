package impl

import (
	"context"
	"log/slog"

	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
)

// Firebase batch size limit
const firebaseBatchSize = 500

// pushService implements service.PushService on top of the device store and a
// NotificationService.
type pushService struct {
	deviceRepo      repository.DeviceRepository
	notificationSvc service.NotificationService
	logger          *slog.Logger
}

// NewPushService creates a new push service instance
func NewPushService(
	deviceRepo repository.DeviceRepository,
	notificationSvc service.NotificationService,
	logger *slog.Logger,
) service.PushService {
	return &pushService{
		deviceRepo:      deviceRepo,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// SendToUser notifies every active device of userID. Devices whose tokens are reported
// invalid are removed.
func (s *pushService) SendToUser(ctx context.Context, userID string, msg service.PushMessage) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("user id is not a UUID")
	}

	devices, err := s.deviceRepo.FindActiveDevicesByUser(ctx, id)
	if err != nil {
		return domainerrors.NewExternalServiceError("device store", err)
	}
	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
	}

	data := map[string]string{
		"type":            "new_message",
		"conversation_id": msg.ConversationID,
	}

	logger := scopedLogger(ctx, s.logger).With(slog.String("user_id", userID))

	var (
		totalSent     = 0
		totalFailed   = 0
		invalidTokens []string
		lastErr       error
	)

	for i := 0; i < len(tokens); i += firebaseBatchSize {
		end := min(i+firebaseBatchSize, len(tokens))
		batch := tokens[i:end]

		successCount, failureCount, batchInvalidTokens, err := s.notificationSvc.SendBatchNotification(ctx, batch, msg.Title, msg.Body, data)
		if err != nil {
			// Keep going with the remaining batches
			totalFailed += len(batch)
			lastErr = err
			logger.Warn("[Push] Batch failed", slog.Int("batch_size", len(batch)), slog.Any("error", err))

			continue
		}

		totalSent += successCount
		totalFailed += failureCount
		invalidTokens = append(invalidTokens, batchInvalidTokens...)
	}

	if len(invalidTokens) > 0 {
		if err := s.deviceRepo.DeleteDevicesByToken(ctx, invalidTokens); err != nil {
			logger.Warn("[Push] Failed to delete invalid devices", slog.Any("error", err))
		}
	}

	logger.Debug("[Push] Sent",
		slog.Int("sent", totalSent),
		slog.Int("failed", totalFailed),
		slog.Int("invalid_tokens", len(invalidTokens)),
	)

	if totalSent == 0 && lastErr != nil {
		return domainerrors.NewExternalServiceError("push gateway", lastErr)
	}

	return nil
}
