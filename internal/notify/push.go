package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushSender delivers a rendered notification to a registered device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender builds a Firebase Cloud Messaging sender from a service
// account credentials file.
func NewFCMSender(ctx context.Context, credentialsFile, projectID string) (PushSender, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
		option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &fcmSender{client: client}, nil
}

func (s *fcmSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}
