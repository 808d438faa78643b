// Package templates renders tenant reply templates into the message posted
// back to a comment author. Template selection and personalization recover
// the original moderation platform's behavior: intent beats sentiment beats
// urgency, and rendering errors fall back to a stock reply rather than
// blocking the executor.
package templates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/policy"
)

// DefaultReply is the fallback used when no template matches or rendering
// fails.
const DefaultReply = "Thank you for your comment! We appreciate your feedback and will respond soon."

var placeholderPattern = regexp.MustCompile(`\{[^}]+\}`)

// ReplyInput carries everything the generator needs about one comment.
type ReplyInput struct {
	AuthorName string
	Platform   string
}

// GenerateReply builds the reply message for a comment from the tenant's
// response templates.
func GenerateReply(in ReplyInput, c classification.Classification, tpl policy.ResponseTemplates, now time.Time) string {
	template := selectTemplate(c, tpl)
	message := personalize(template, in, c, now)
	return applyMessageRules(message, tpl)
}

// selectTemplate picks a template by intent first, then sentiment, then
// urgency, then the tenant default.
func selectTemplate(c classification.Classification, tpl policy.ResponseTemplates) string {
	for _, key := range []string{string(c.Intent), string(c.Sentiment), string(c.Urgency), "default"} {
		if t, ok := tpl.Templates[key]; ok && t != "" {
			return t
		}
	}
	return DefaultReply
}

// personalize substitutes placeholder variables and scrubs any that remain.
func personalize(template string, in ReplyInput, c classification.Classification, now time.Time) string {
	firstName := ""
	if fields := strings.Fields(in.AuthorName); len(fields) > 0 {
		firstName = fields[0]
	}

	platform := in.Platform
	if platform == "" {
		platform = "social media"
	}

	replacements := map[string]string{
		"{name}":        firstName,
		"{first_name}":  firstName,
		"{time_of_day}": timeOfDayGreeting(now),
		"{sentiment}":   string(c.Sentiment),
		"{platform}":    titleCase(platform),
	}

	message := template
	for placeholder, value := range replacements {
		message = strings.ReplaceAll(message, placeholder, value)
	}

	message = placeholderPattern.ReplaceAllString(message, "")
	return strings.TrimSpace(message)
}

// applyMessageRules enforces the tenant's length cap and appends the
// configured signature.
func applyMessageRules(message string, tpl policy.ResponseTemplates) string {
	// Truncate on rune boundaries so a multi-byte character is never split.
	if runes := []rune(message); tpl.MaxReplyLength > 3 && len(runes) > tpl.MaxReplyLength {
		message = string(runes[:tpl.MaxReplyLength-3]) + "..."
	}

	if tpl.Signature != "" {
		message = fmt.Sprintf("%s\n\n%s", message, tpl.Signature)
	}

	if tpl.UseEmojis {
		message = decorate(message)
	}

	return message
}

func timeOfDayGreeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 17:
		return "Good afternoon"
	case hour >= 17 && hour < 21:
		return "Good evening"
	default:
		return "Hello"
	}
}

func decorate(message string) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "thank", "appreciate", "great"):
		return message + " 😊"
	case containsAny(lower, "sorry", "apologize", "issue"):
		return message + " 🙏"
	case containsAny(lower, "help", "support", "assist"):
		return message + " 🤝"
	default:
		return message
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
