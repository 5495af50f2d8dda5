package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/telemetry"
	"github.com/sony/gobreaker"
)

const EventTypeDecision = "REQUEST_DECIDED"

// SQSClient sendMessage interface based on aws sdk
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher publishes approval decisions to a queue for downstream consumers
// such as payroll.
type SQSPublisher struct {
	client   SQSClient
	queueURL string
	cb       *gobreaker.CircuitBreaker
}

func NewSQSPublisher(client SQSClient, queueURL string) *SQSPublisher {
	settings := gobreaker.Settings{
		Name:        "SQS-decisions",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// PublishDecision implements approval.DecisionPublisher.
func (p *SQSPublisher) PublishDecision(ctx context.Context, event approval.DecisionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"EventType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(EventTypeDecision),
		},
	}
	telemetry.InjectTraceContext(ctx, attrs)

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return p.client.SendMessage(ctx, input)
	})
	if err != nil {
		return fmt.Errorf("failed to send message to decision queue: %w", err)
	}
	return nil
}
