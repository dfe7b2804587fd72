package gateway

import (
	"context"

	"yumigo/models"
)

// LiveNotifier decorates a NotificationSink with a live push to the
// recipient. The push only happens after the record is stored; push
// wiring failures are the pusher's problem, never the caller's.
type LiveNotifier struct {
	Sink NotificationSink
	Push func(userID string, n *models.Notification)
}

func (l *LiveNotifier) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	id, err := l.Sink.CreateNotification(ctx, n)
	if err != nil {
		return "", err
	}
	if l.Push != nil {
		l.Push(n.UserID, n)
	}
	return id, nil
}
