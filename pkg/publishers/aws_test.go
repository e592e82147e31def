package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendsAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), NewEvent("docs", "sentence-t5-large", "in-1", "hello", `[1]`))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["source_id"]
	if !ok || aws.ToString(attr.StringValue) != "docs" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("source_id attribute missing or wrong: %#v", attr)
	}
	if attr := client.input.MessageAttributes["model"]; aws.ToString(attr.StringValue) != "sentence-t5-large" {
		t.Fatalf("model attribute = %#v", attr)
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"data":[1]`) {
		t.Fatalf("MessageBody missing data: %s", body)
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), NewEvent("docs", "m", "i", "x", `[]`)); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSPublisherPublish(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), NewEvent("docs", "m1", "in-1", "hello", `{"v":1}`)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr := client.input.MessageAttributes["source_id"]; aws.ToString(attr.StringValue) != "docs" {
		t.Fatalf("source_id attribute = %#v", attr)
	}
	if msg := aws.ToString(client.input.Message); !strings.Contains(msg, `"source_id":"docs"`) {
		t.Fatalf("Message missing source_id: %s", msg)
	}
}

func TestSNSPublisherOmitsEmptyAttributes(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "topic", topicARN: "arn", client: client, log: noopLogger{}}

	if err := pub.Publish(context.Background(), NewEvent("", "m1", "", "hello", `[]`)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if _, ok := client.input.MessageAttributes["source_id"]; ok {
		t.Fatalf("empty source_id should not be sent as attribute")
	}
}

func TestSNSPublisherPublishError(t *testing.T) {
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), NewEvent("docs", "m", "i", "x", `[]`)); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
