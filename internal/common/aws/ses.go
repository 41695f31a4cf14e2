// Package aws holds thin SES and SNS wrappers used for applicant and admin notifications.
package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// LoadConfig resolves credentials from the default chain for region.
func LoadConfig(ctx context.Context, region string) (awsv2.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

type SESClient struct {
	client *ses.Client
}

func NewSESClient(cfg awsv2.Config) *SESClient {
	return &SESClient{client: ses.NewFromConfig(cfg)}
}

// SendEmail sends a single html+text message and returns the SES message id.
func (s *SESClient) SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awsv2.String(from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: awsv2.String(subject), Charset: awsv2.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: awsv2.String(htmlBody), Charset: awsv2.String("UTF-8")},
				Text: &types.Content{Data: awsv2.String(textBody), Charset: awsv2.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return awsv2.ToString(out.MessageId), nil
}
