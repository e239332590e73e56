package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Optional outbound alerting: when SLACK_WEBHOOK_URL or DISCORD_WEBHOOK_URL is
// configured, budget warnings and overdue digests are mirrored to chat.
// Failures are logged and never escalate; in-app notification rows are the
// source of truth.

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type Alert struct {
	Title       string
	ProjectName string
	Message     string
	Severity    string
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type slackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
}

type discordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// SendAlert mirrors an alert to any configured chat webhooks.
func SendAlert(alert Alert) {
	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" {
		if err := sendSlack(url, alert); err != nil {
			log.Printf("Slack webhook failed: %v", err)
		}
	}

	if url := os.Getenv("DISCORD_WEBHOOK_URL"); url != "" {
		if err := sendDiscord(url, alert); err != nil {
			log.Printf("Discord webhook failed: %v", err)
		}
	}
}

func sendSlack(url string, alert Alert) error {
	color := "#f2c744"
	if alert.Severity == SeverityCritical {
		color = "#d72638"
	}

	payload := slackWebhookRequest{
		Username: "BudgetBoard",
		Text:     alert.Title,
		Attachments: []slackAttachment{{
			Color: color,
			Title: alert.ProjectName,
			Text:  alert.Message,
			Fields: []slackField{
				{Title: "Severity", Value: alert.Severity, Short: true},
			},
			Footer:    "budgetboard",
			Timestamp: time.Now().Unix(),
		}},
	}

	return postJSON(url, payload)
}

func sendDiscord(url string, alert Alert) error {
	color := 0xf2c744
	if alert.Severity == SeverityCritical {
		color = 0xd72638
	}

	payload := discordWebhookRequest{
		Username: "BudgetBoard",
		Embeds: []discordEmbed{{
			Title:       alert.Title,
			Description: alert.Message,
			Color:       color,
			Fields: []discordField{
				{Name: "Project", Value: alert.ProjectName, Inline: true},
				{Name: "Severity", Value: alert.Severity, Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}},
	}

	return postJSON(url, payload)
}

func postJSON(url string, payload interface{}) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return err
	}

	resp, err := webhookClient.Post(url, "application/json", bytes.NewReader(body))

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
