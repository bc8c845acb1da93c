package impl

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"
	mockRepo "beacon/internal/mocks/repository"
	mockService "beacon/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func devicesFor(userID uuid.UUID, n int) []*entity.UserDevice {
	devices := make([]*entity.UserDevice, 0, n)
	for i := range n {
		devices = append(devices, &entity.UserDevice{
			ID:       uuid.New(),
			UserID:   userID,
			FCMToken: fmt.Sprintf("token-%d", i),
			IsActive: true,
		})
	}

	return devices
}

func TestPushService_SendToUser(t *testing.T) {
	deviceRepo := mockRepo.NewMockDeviceRepository(t)
	notifier := mockService.NewMockNotificationService(t)
	srv := NewPushService(deviceRepo, notifier, discardLogger())

	ctx := context.Background()
	userID := uuid.New()
	conversationID := uuid.NewString()
	msg := service.PushMessage{Title: "New message from Alice", Body: "Still available?", ConversationID: conversationID}

	deviceRepo.EXPECT().FindActiveDevicesByUser(ctx, userID).Return(devicesFor(userID, 2), nil)
	notifier.EXPECT().
		SendBatchNotification(ctx, []string{"token-0", "token-1"}, msg.Title, msg.Body, map[string]string{
			"type":            "new_message",
			"conversation_id": conversationID,
		}).
		Return(1, 1, []string{"token-1"}, nil)
	deviceRepo.EXPECT().DeleteDevicesByToken(ctx, []string{"token-1"}).Return(nil)

	require.NoError(t, srv.SendToUser(ctx, userID.String(), msg))
}

func TestPushService_SendToUserBatches(t *testing.T) {
	deviceRepo := mockRepo.NewMockDeviceRepository(t)
	notifier := mockService.NewMockNotificationService(t)
	srv := NewPushService(deviceRepo, notifier, discardLogger())

	ctx := context.Background()
	userID := uuid.New()
	deviceRepo.EXPECT().FindActiveDevicesByUser(ctx, userID).Return(devicesFor(userID, 1201), nil)

	var batchSizes []int
	notifier.EXPECT().
		SendBatchNotification(ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, tokens []string, _, _ string, _ map[string]string) {
			batchSizes = append(batchSizes, len(tokens))
		}).
		Return(1, 0, nil, nil).
		Times(3)

	require.NoError(t, srv.SendToUser(ctx, userID.String(), service.PushMessage{Title: "t", Body: "b"}))
	assert.Equal(t, []int{500, 500, 201}, batchSizes)
}

func TestPushService_SendToUserWithoutDevices(t *testing.T) {
	deviceRepo := mockRepo.NewMockDeviceRepository(t)
	srv := NewPushService(deviceRepo, mockService.NewMockNotificationService(t), discardLogger())

	ctx := context.Background()
	userID := uuid.New()
	deviceRepo.EXPECT().FindActiveDevicesByUser(ctx, userID).Return(nil, nil)

	assert.NoError(t, srv.SendToUser(ctx, userID.String(), service.PushMessage{}))
}

func TestPushService_SendToUserErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid user id", func(t *testing.T) {
		srv := NewPushService(mockRepo.NewMockDeviceRepository(t), mockService.NewMockNotificationService(t), discardLogger())

		err := srv.SendToUser(ctx, "not-a-uuid", service.PushMessage{})

		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("device store failure", func(t *testing.T) {
		deviceRepo := mockRepo.NewMockDeviceRepository(t)
		srv := NewPushService(deviceRepo, mockService.NewMockNotificationService(t), discardLogger())
		userID := uuid.New()
		deviceRepo.EXPECT().FindActiveDevicesByUser(ctx, userID).Return(nil, errors.New("timeout"))

		err := srv.SendToUser(ctx, userID.String(), service.PushMessage{})

		var external *domainerrors.ExternalServiceError
		assert.ErrorAs(t, err, &external)
	})

	t.Run("every batch fails", func(t *testing.T) {
		deviceRepo := mockRepo.NewMockDeviceRepository(t)
		notifier := mockService.NewMockNotificationService(t)
		srv := NewPushService(deviceRepo, notifier, discardLogger())
		userID := uuid.New()
		deviceRepo.EXPECT().FindActiveDevicesByUser(ctx, userID).Return(devicesFor(userID, 1), nil)
		notifier.EXPECT().
			SendBatchNotification(ctx, []string{"token-0"}, mock.Anything, mock.Anything, mock.Anything).
			Return(0, 0, nil, errors.New("fcm unavailable"))

		err := srv.SendToUser(ctx, userID.String(), service.PushMessage{})

		var external *domainerrors.ExternalServiceError
		assert.ErrorAs(t, err, &external)
	})
}
