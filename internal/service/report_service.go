package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"spellstar/internal/models"
)

// ReportService emails a grown-up a summary of a player's spelling progress
// via Amazon SES
type ReportService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewReportService creates a new report service. When fromEmail is empty the
// service is created disabled and sending becomes a logged no-op.
func NewReportService(awsRegion, fromEmail, fromName string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Progress report email disabled: REPORT_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Progress report email enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &ReportService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the report service is enabled
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendProgressReport renders the player's per-theme results and emails them
func (s *ReportService) SendProgressReport(ctx context.Context, toEmail string, saved *models.SavedProgress) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress report to %s", toEmail)
		return nil
	}

	subject := "Spellstar Progress Report"
	htmlBody, textBody := renderProgressReport(saved)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// renderProgressReport builds the HTML and plain-text bodies for a report
func renderProgressReport(saved *models.SavedProgress) (string, string) {
	themeIDs := make([]string, 0, len(saved.Themes))
	for id := range saved.Themes {
		themeIDs = append(themeIDs, id)
	}
	sort.Strings(themeIDs)

	var htmlRows, textLines strings.Builder
	for _, themeID := range themeIDs {
		tp := saved.Themes[themeID]

		levels := make([]int, 0, len(tp.Levels))
		for level := range tp.Levels {
			levels = append(levels, level)
		}
		sort.Ints(levels)

		completed := 0
		stars := 0
		for _, level := range levels {
			lp := tp.Levels[level]
			if lp.Completed {
				completed++
			}
			stars += lp.Stars
		}

		fmt.Fprintf(&htmlRows,
			`<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
			themeID, completed, stars, tp.TotalScore)
		fmt.Fprintf(&textLines,
			"- %s: %d levels completed, %d stars, %d points\n",
			themeID, completed, stars, tp.TotalScore)
	}

	if len(themeIDs) == 0 {
		htmlRows.WriteString(`<tr><td colspan="4">No levels played yet</td></tr>`)
		textLines.WriteString("No levels played yet.\n")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #7c5cd6; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Spelling Progress Report</h1>
		</div>
		<div class="content">
			<p>Here is how spelling practice is going:</p>
			<table>
				<tr><th>Theme</th><th>Levels done</th><th>Stars</th><th>Score</th></tr>
				%s
			</table>
			<p>Last played: %s</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Spellstar. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, htmlRows.String(), saved.LastPlayed)

	textBody := fmt.Sprintf(`Spelling Progress Report

Here is how spelling practice is going:

%s
Last played: %s

---
This is an automated email from Spellstar. Please do not reply.
`, textLines.String(), saved.LastPlayed)

	return htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if result.MessageId != nil {
		log.Printf("Progress report sent: to=%s, message id=%s", toEmail, *result.MessageId)
	} else {
		log.Printf("Progress report sent: to=%s", toEmail)
	}
	return nil
}
