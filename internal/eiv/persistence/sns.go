package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"eiv-admissions/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EventPredictionCompleted is the event type attribute on published messages.
const EventPredictionCompleted = "eiv.prediction.completed"

// SNSAPI is the subset of the SNS client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher announces persisted results on a topic.
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNSPublisher(client SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Name() string { return "sns" }

type predictionEvent struct {
	Event          string                 `json:"event"`
	RequestID      string                 `json:"requestId"`
	VOBID          string                 `json:"vobId"`
	PredictionDate string                 `json:"predictionDate"`
	SCA            models.ScenarioOutcome `json:"sca"`
	NSCA           models.ScenarioOutcome `json:"nsca"`
	ModelVersion   string                 `json:"modelVersion,omitempty"`
}

func (p *SNSPublisher) Deliver(ctx context.Context, r *models.PredictionResult) error {
	vobID := DefaultVOBID
	if r.VOBID != nil {
		vobID = *r.VOBID
	}
	// client names stay out of the event
	msg, err := json.Marshal(predictionEvent{
		Event:          EventPredictionCompleted,
		RequestID:      r.RequestID,
		VOBID:          vobID,
		PredictionDate: r.PredictionDate.Format("2006-01-02"),
		SCA:            r.SCA,
		NSCA:           r.NSCA,
		ModelVersion:   r.ModelVersion,
	})
	if err != nil {
		return fmt.Errorf("encode prediction event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(msg)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventPredictionCompleted)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish prediction event: %w", err)
	}
	return nil
}
