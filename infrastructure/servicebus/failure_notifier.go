package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"postpilot/domain/model"
	"postpilot/infrastructure/logger"
)

type IFailureNotifier interface {
	NotifyFailure(ctx context.Context, postID, userID string, result *model.PublicationResult) error
}

// FailureNotifier pushes failed publications onto an operator alerting queue.
type FailureNotifier struct {
	AzservicebusClient *azservicebus.Client
	QueueName          string
}

func NewFailureNotifier(azServiceBusClient *azservicebus.Client, queueName string) IFailureNotifier {
	return &FailureNotifier{AzservicebusClient: azServiceBusClient, QueueName: queueName}
}

type failureNotice struct {
	PostID   string                 `json:"post_id"`
	UserID   string                 `json:"user_id"`
	Outcomes []model.PublishOutcome `json:"outcomes"`
}

func (n *FailureNotifier) NotifyFailure(ctx context.Context, postID, userID string, result *model.PublicationResult) error {
	payload, err := json.Marshal(failureNotice{PostID: postID, UserID: userID, Outcomes: result.Outcomes})
	if err != nil {
		return err
	}

	sender, err := n.AzservicebusClient.NewSender(n.QueueName, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	sbMessage := &azservicebus.Message{
		Body: payload,
	}
	if err = sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}

	return nil
}
