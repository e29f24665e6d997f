package reporter

import (
	"fmt"
	"html"
	"log"
	"strings"

	"go-jobpost-scraper/internal/models"
)

// Reporter announces run results somewhere a human will see them
type Reporter interface {
	SendJob(rec models.JobRecord) error
	SendStatus(message string) error
	SendError(err error) error
}

const descriptionPreview = 300

// LogReporter writes reports to the standard logger. It is used when no
// Telegram chat is configured.
type LogReporter struct{}

func (LogReporter) SendJob(rec models.JobRecord) error {
	log.Printf("📌 %s @ %s (%s)", orNA(rec.Title), orNA(rec.Company), rec.URL)
	return nil
}

func (LogReporter) SendStatus(message string) error {
	log.Printf("ℹ️ %s", message)
	return nil
}

func (LogReporter) SendError(err error) error {
	log.Printf("❌ %v", err)
	return nil
}

// FormatJob renders a record as a Telegram HTML message
func FormatJob(rec models.JobRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", html.EscapeString(orNA(rec.Title)))
	fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(orNA(rec.Company)))
	fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(orNA(rec.Location)))
	if rec.Posted != "" {
		fmt.Fprintf(&b, "📅 %s\n", html.EscapeString(rec.Posted))
	}
	if rec.Applicants != "" {
		fmt.Fprintf(&b, "👥 %s\n", html.EscapeString(rec.Applicants))
	}
	if rec.JobDescription != "" {
		fmt.Fprintf(&b, "📄 %s\n", html.EscapeString(preview(rec.JobDescription, descriptionPreview)))
	}
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">View Job</a>", html.EscapeString(rec.URL))
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// preview cuts s to at most n runes
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
