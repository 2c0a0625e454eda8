package storefront_events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	dmodel "storefront-service/pkg"
)

// Publisher_SQS
// pushes placed-order events to an SQS queue so fulfillment tooling
// can pick them up; placement never depends on a publish succeeding
type Publisher_SQS struct {
	client   *sqs.Client
	queueURL string
}

func New(ctx context.Context, region, queueURL string) (*Publisher_SQS, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &Publisher_SQS{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

// orderPlacedEvent
// what the queue consumer sees; item snapshots carried verbatim
type orderPlacedEvent struct {
	OrderID      string             `json:"order_id"`
	CustomerName string             `json:"customer_name"`
	TotalAmount  int64              `json:"total_amount"`
	Items        []dmodel.OrderItem `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (p *Publisher_SQS) Publish_OrderPlaced(ctx context.Context, order *dmodel.Order) error {
	event := orderPlacedEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TotalAmount:  order.TotalAmount,
		Items:        order.Items,
		CreatedAt:    order.CreatedAt,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}
