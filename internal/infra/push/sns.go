package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, params *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSConfig struct {
	Region                 string
	PlatformApplicationARN string
	HTTPClient             *http.Client
}

// SNSPusher registers the device token as a platform endpoint and publishes
// an FCM payload to it. CreatePlatformEndpoint is idempotent for the same
// token, so no endpoint cache is kept.
type SNSPusher struct {
	client         snsAPI
	applicationARN string
}

func NewSNSPusher(ctx context.Context, cfg SNSConfig) (*SNSPusher, error) {
	if strings.TrimSpace(cfg.PlatformApplicationARN) == "" {
		return nil, fmt.Errorf("sns platform application arn is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.HTTPClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(cfg.HTTPClient))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSPusher{client: sns.NewFromConfig(awsCfg), applicationARN: cfg.PlatformApplicationARN}, nil
}

func (p *SNSPusher) Push(ctx context.Context, deviceToken string, msg Message) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return ErrNoDevice
	}

	endpoint, err := p.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.applicationARN),
		Token:                  aws.String(deviceToken),
	})
	if err != nil {
		return fmt.Errorf("create platform endpoint: %w", err)
	}

	raw, err := encodeFCM(msg)
	if err != nil {
		return err
	}

	if _, err := p.client.Publish(ctx, &sns.PublishInput{
		MessageStructure: aws.String("json"),
		Message:          aws.String(raw),
		TargetArn:        endpoint.EndpointArn,
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func encodeFCM(msg Message) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"data": msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gcm payload: %w", err)
	}
	envelope, err := json.Marshal(map[string]string{
		"default": msg.Body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns message: %w", err)
	}
	return string(envelope), nil
}
