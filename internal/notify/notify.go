// Package notify delivers operational warnings. Delivery is
// fire-and-forget: a warning that cannot be sent is logged and dropped,
// never failing the run that raised it.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier sends an operational warning.
type Notifier interface {
	Warn(ctx context.Context, subject, message string)
}

// Log is a Notifier that only writes to the structured log. Used in
// local runs and as the fallback when no topic is configured.
type Log struct{}

func (Log) Warn(_ context.Context, subject, message string) {
	slog.Warn("operational warning", "subject", subject, "message", message)
}

// SNS publishes warnings to an SNS topic, mirroring the alerting channel
// of the surrounding system.
type SNS struct {
	client   *sns.Client
	topicARN string
}

// NewSNS builds an SNS notifier using the default AWS credential chain.
func NewSNS(ctx context.Context, topicARN, region string) (*SNS, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNS{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func (n *SNS) Warn(ctx context.Context, subject, message string) {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		slog.Error("warning publish failed", "subject", subject, "error", err)
		return
	}
	slog.Info("warning sent", "subject", subject)
}
