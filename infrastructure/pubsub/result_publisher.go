package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"
	"postpilot/domain/model"
	"postpilot/infrastructure/logger"
)

type IResultPublisher interface {
	PublishResult(ctx context.Context, postID, userID string, result *model.PublicationResult) (string, error)
}

// ResultPublisher emits one event per orchestration run so downstream
// consumers (reporting, reconciliation) can react to publication results.
type ResultPublisher struct {
	PubSubClient *pubsub.Client
	TopicName    string
}

func NewResultPublisher(pubSubClient *pubsub.Client, topicName string) IResultPublisher {
	return &ResultPublisher{PubSubClient: pubSubClient, TopicName: topicName}
}

type resultEvent struct {
	PostID string                   `json:"post_id"`
	UserID string                   `json:"user_id"`
	Result *model.PublicationResult `json:"result"`
}

func (p *ResultPublisher) PublishResult(ctx context.Context, postID, userID string, result *model.PublicationResult) (string, error) {
	payload, err := json.Marshal(resultEvent{PostID: postID, UserID: userID, Result: result})
	if err != nil {
		return "", err
	}

	topic := p.PubSubClient.Topic(p.TopicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.TopicName).Info("Topic doesn't exist - creating it")
		if _, err = p.PubSubClient.CreateTopic(ctx, p.TopicName); err != nil {
			return "", err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverID).Info("Publication result event published")
	return serverID, nil
}
