package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg awsv2.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// SendSMS publishes a transactional SMS and returns the SNS message id.
func (s *SNSClient) SendSMS(ctx context.Context, phoneNumber, message string) (string, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awsv2.String(phoneNumber),
		Message:     awsv2.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    awsv2.String("String"),
				StringValue: awsv2.String("Transactional"),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return awsv2.ToString(out.MessageId), nil
}
