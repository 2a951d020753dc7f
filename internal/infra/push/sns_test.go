package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNS struct {
	createdTokens []string
	published     []*sns.PublishInput
	publishErr    error
}

func (f *fakeSNS) CreatePlatformEndpoint(_ context.Context, in *sns.CreatePlatformEndpointInput, _ ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error) {
	f.createdTokens = append(f.createdTokens, aws.ToString(in.Token))
	return &sns.CreatePlatformEndpointOutput{EndpointArn: aws.String("arn:aws:sns:endpoint/" + aws.ToString(in.Token))}, nil
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, in)
	return &sns.PublishOutput{}, nil
}

func TestSNSPusherPublishesFCMPayload(t *testing.T) {
	api := &fakeSNS{}
	p := &SNSPusher{client: api, applicationARN: "arn:aws:sns:app"}

	err := p.Push(context.Background(), "tok-1", Message{
		Title: "It's a match!",
		Body:  "You and Asha liked each other",
		Data:  map[string]string{"type": "match", "matchId": "m1"},
	})
	if err != nil {
		t.Fatalf("unexpected push error: %v", err)
	}
	if len(api.createdTokens) != 1 || api.createdTokens[0] != "tok-1" {
		t.Fatalf("unexpected endpoint registrations: %v", api.createdTokens)
	}
	if len(api.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(api.published))
	}
	in := api.published[0]
	if aws.ToString(in.TargetArn) != "arn:aws:sns:endpoint/tok-1" {
		t.Fatalf("unexpected target arn: %s", aws.ToString(in.TargetArn))
	}

	var envelope map[string]string
	if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &envelope); err != nil {
		t.Fatalf("message must be json: %v", err)
	}
	var gcm struct {
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data"`
	}
	if err := json.Unmarshal([]byte(envelope["GCM"]), &gcm); err != nil {
		t.Fatalf("GCM value must be a json string: %v", err)
	}
	if gcm.Data["matchId"] != "m1" || gcm.Notification["title"] != "It's a match!" {
		t.Fatalf("unexpected gcm payload: %+v", gcm)
	}
}

func TestSNSPusherRejectsEmptyToken(t *testing.T) {
	p := &SNSPusher{client: &fakeSNS{}, applicationARN: "arn"}
	if err := p.Push(context.Background(), "  ", Message{}); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestSNSPusherWrapsPublishError(t *testing.T) {
	boom := errors.New("throttled")
	p := &SNSPusher{client: &fakeSNS{publishErr: boom}, applicationARN: "arn"}
	if err := p.Push(context.Background(), "tok", Message{Body: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}
