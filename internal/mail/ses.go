package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrMailerNotConfigured = errors.New("mailer sender and region are required")

const loginCodeSubject = "Your Side Effect Tracker sign-in code"

// EmailSender is the part of the SES client the mailer calls.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client EmailSender
	sender string
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region string, sender string) (*SESMailer, error) {
	region = strings.TrimSpace(region)
	sender = strings.TrimSpace(sender)
	if region == "" || sender == "" {
		return nil, ErrMailerNotConfigured
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESMailerWithClient(ses.NewFromConfig(cfg), sender), nil
}

func NewSESMailerWithClient(client EmailSender, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

func (mailer *SESMailer) SendLoginCode(ctx context.Context, email string, code string) error {
	body := fmt.Sprintf("Your sign-in code is: %s\n\nIt expires in 10 minutes. If you did not ask for it, ignore this email.", code)
	return mailer.send(ctx, email, loginCodeSubject, body)
}

func (mailer *SESMailer) send(ctx context.Context, to string, subject string, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
		Source: aws.String(mailer.sender),
	}

	if _, err := mailer.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
