package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"linguadrill/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. When fromEmail is empty
// the service is disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to LinguaDrill!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Welcome to LinguaDrill!</h1>
		<p>Hi %s,</p>
		<p>Your account is ready. Add the words and forms you want to learn,
		then drill them until they stick. Items you keep getting right are
		set aside automatically so you can focus on the ones you miss.</p>
		<p><a href="%s/login">Start practicing</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from LinguaDrill. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your account is ready. Add the words and forms you want to learn, then
drill them until they stick. Items you keep getting right are set aside
automatically so you can focus on the ones you miss.

Start practicing: %s/login

---
This is an automated email from LinguaDrill. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendProgressSummaryEmail sends a snapshot of the user's overall progress
func (s *EmailService) SendProgressSummaryEmail(ctx context.Context, toEmail, toName string, overall *models.OverallStats) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress summary to %s", toEmail)
		return nil
	}

	subject := "Your LinguaDrill progress"
	accuracy := overall.Accuracy() * 100
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Your progress so far</h1>
		<p>Hi %s,</p>
		<ul>
			<li>Items practiced: %d of %d</li>
			<li>Correct answers: %d</li>
			<li>Wrong answers: %d</li>
			<li>Accuracy: %.0f%%</li>
		</ul>
		<p><a href="%s/login">Keep going</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from LinguaDrill. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, overall.ItemsPracticed, overall.TotalItems, overall.TotalCorrect, overall.TotalWrong, accuracy, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your progress so far:

- Items practiced: %d of %d
- Correct answers: %d
- Wrong answers: %d
- Accuracy: %.0f%%

Keep going: %s/login

---
This is an automated email from LinguaDrill. Please do not reply.
`, toName, overall.ItemsPracticed, overall.TotalItems, overall.TotalCorrect, overall.TotalWrong, accuracy, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
