package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/shopspring/decimal"

	"github.com/Pratonic/ApniMandi/configs"
)

func SendOrderConfirmationEmail(recipientEmail string, vendorName string, orderID string, total decimal.Decimal) error {
	cfg := config.LoadEmailConfig()

	if cfg.SenderEmail == "" {
		return fmt.Errorf("sender email address is not configured in environment variables")
	}
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {

		log.Printf("Failed to load AWS SDK config for email to %s (order %s): %v", recipientEmail, orderID, err)
		return fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := ses.NewFromConfig(awsCfg)

	subject := fmt.Sprintf("Apna Mandi Order %s Placed", orderID)

	totalStr := total.StringFixed(2)

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Your ingredient order %s has been placed and is awaiting procurement.</p>
            <p><strong>Order Details:</strong></p>
            <ul>
                <li>Order ID: %s</li>
                <li>Current Total: Rs %s (includes Rs 40 convenience fee)</li>
            </ul>
            <p>Note: the total follows live mandi prices and may change until delivery.</p>
            <p>Best regards,</p>
            <p>The Apna Mandi Team</p>
        </body>
        </html>`, vendorName, orderID, orderID, totalStr)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nYour ingredient order %s has been placed and is awaiting procurement.\n\n"+
			"Order Details:\nOrder ID: %s\nCurrent Total: Rs %s (includes Rs 40 convenience fee)\n\n"+
			"Note: the total follows live mandi prices and may change until delivery.\n\nBest regards,\nThe Apna Mandi Team",
		vendorName, orderID, orderID, totalStr)

	input := &ses.SendEmailInput{
		Source: aws.String(cfg.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{recipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	_, err = client.SendEmail(context.TODO(), input)
	if err != nil {
		log.Printf("Failed to send email for order %s to %s: %v", orderID, recipientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Order confirmation email sent successfully for order %s to %s", orderID, recipientEmail)
	return nil
}
