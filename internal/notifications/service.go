package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kudoslab/kudos-bot/internal/config"
	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service announces generated weekly digests via the configured channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// WebhookMessage is a MessageCard-style payload understood by Teams-compatible
// incoming webhooks
type WebhookMessage struct {
	Type     string           `json:"@type"`
	Context  string           `json:"@context"`
	Title    string           `json:"title"`
	Text     string           `json:"text"`
	Sections []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	ActivityTitle string        `json:"activityTitle,omitempty"`
	ActivityText  string        `json:"activityText,omitempty"`
	Facts         []WebhookFact `json:"facts,omitempty"`
	Markdown      bool          `json:"markdown,omitempty"`
}

type WebhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendDigest sends a digest via all configured channels. Channel failures
// are collected so one broken channel does not mute the others.
func (s *Service) SendDigest(digest *models.WeeklyDigest) error {
	var errs []string

	if s.config.WebhookURL != "" {
		if err := s.sendToWebhook(digest); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent digest to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(digest); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(digest *models.WeeklyDigest) error {
	message := s.buildWebhookMessage(digest)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildWebhookMessage(digest *models.WeeklyDigest) *WebhookMessage {
	message := &WebhookMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Weekly Kudos Digest %s - %s", digest.WeekStart, digest.WeekEnd),
		Text:    fmt.Sprintf("%d recognitions were sent this week", digest.Stats.TotalRecognitions),
	}

	facts := []WebhookFact{
		{Name: "Week", Value: fmt.Sprintf("%s - %s", digest.WeekStart, digest.WeekEnd)},
		{Name: "Total Recognitions", Value: fmt.Sprintf("%d", digest.Stats.TotalRecognitions)},
	}
	message.Sections = append(message.Sections, WebhookSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(digest.Stats.TopReceivers) > 0 {
		message.Sections = append(message.Sections, WebhookSection{
			ActivityTitle: "Top Receivers",
			ActivityText:  rankingText(digest.Stats.TopReceivers),
			Markdown:      true,
		})
	}

	if len(digest.Stats.TopGivers) > 0 {
		message.Sections = append(message.Sections, WebhookSection{
			ActivityTitle: "Top Givers",
			ActivityText:  rankingText(digest.Stats.TopGivers),
			Markdown:      true,
		})
	}

	return message
}

func rankingText(entries []models.RankingEntry) string {
	medals := []string{"🥇", "🥈", "🥉"}

	var lines []string
	for i, entry := range entries {
		medal := "•"
		if i < len(medals) {
			medal = medals[i]
		}
		lines = append(lines, fmt.Sprintf("%s **%s** (%d)", medal, entry.UserName, entry.Count))
	}
	return strings.Join(lines, "\n\n")
}

func (s *Service) sendEmail(digest *models.WeeklyDigest) error {
	subject := fmt.Sprintf("Weekly Kudos Digest %s (%d recognitions)",
		digest.WeekStart, digest.Stats.TotalRecognitions)

	htmlBody, err := s.buildEmailHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	textBody := s.buildEmailText(digest)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(digest *models.WeeklyDigest) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Weekly Kudos Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #e8590c; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .ranking { border-left: 4px solid #e8590c; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .ranking-title { font-weight: bold; margin-bottom: 5px; }
        .entry { color: #333; margin: 4px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Weekly Kudos Digest</h1>
        <p>Week {{.WeekStart}} - {{.WeekEnd}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Total Recognitions:</strong> {{.Stats.TotalRecognitions}}</p>
    </div>

    {{if .Stats.TopReceivers}}
    <div class="ranking">
        <div class="ranking-title">Top Receivers</div>
        {{range $index, $entry := .Stats.TopReceivers}}
        <div class="entry">{{medal $index}} {{$entry.UserName}} ({{$entry.Count}})</div>
        {{end}}
    </div>
    {{end}}

    {{if .Stats.TopGivers}}
    <div class="ranking">
        <div class="ranking-title">Top Givers</div>
        {{range $index, $entry := .Stats.TopGivers}}
        <div class="entry">{{medal $index}} {{$entry.UserName}} ({{$entry.Count}})</div>
        {{end}}
    </div>
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by the Kudos Bot.</small></p>
</body>
</html>
`

	t := template.New("email").Funcs(template.FuncMap{
		"medal": func(index int) string {
			medals := []string{"🥇", "🥈", "🥉"}
			if index < len(medals) {
				return medals[index]
			}
			return "•"
		},
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, digest); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(digest *models.WeeklyDigest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Weekly Kudos Digest %s - %s\n\n", digest.WeekStart, digest.WeekEnd))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Recognitions: %d\n", digest.Stats.TotalRecognitions))

	if len(digest.Stats.TopReceivers) > 0 {
		text.WriteString("\nTOP RECEIVERS\n")
		text.WriteString("=============\n")
		for i, entry := range digest.Stats.TopReceivers {
			text.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, entry.UserName, entry.Count))
		}
	}

	if len(digest.Stats.TopGivers) > 0 {
		text.WriteString("\nTOP GIVERS\n")
		text.WriteString("==========\n")
		for i, entry := range digest.Stats.TopGivers {
			text.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, entry.UserName, entry.Count))
		}
	}

	text.WriteString("\n---\nThis digest was generated automatically by the Kudos Bot.\n")

	return text.String()
}
