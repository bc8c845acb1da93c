package service

import "context"

// NotificationService sends one multicast push. invalidTokens are registrations the
// provider reported as gone; callers deactivate the matching devices.
type NotificationService interface {
	SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)
}

// PushMessage is an offline notification for a user without a live connection.
type PushMessage struct {
	Title          string
	Body           string
	ConversationID string
}

// PushService delivers offline notifications to every active device of a user.
type PushService interface {
	SendToUser(ctx context.Context, userID string, msg PushMessage) error
}
