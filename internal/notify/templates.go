// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"recruitflow/internal/models"
)

// statusTemplates maps a destination pipeline status to its message template.
// Only the four statuses listed here trigger an automatic notification;
// everything else is silent.
var statusTemplates = map[models.Status]models.MessageTemplate{
	models.StatusInterview: {
		Subject: "Interview invitation: {{vacancyTitle}}",
		Body:    "Hello {{candidateName}}, your application for {{vacancyTitle}} has advanced to the interview stage. Our team will contact you shortly to schedule a time.",
	},
	models.StatusEvaluation: {
		Subject: "Your application is under evaluation",
		Body:    "Hello {{candidateName}}, your application for {{vacancyTitle}} is now being evaluated by the hiring team. We will get back to you with the outcome soon.",
	},
	models.StatusOffer: {
		Subject: "Offer update: {{vacancyTitle}}",
		Body:    "Hello {{candidateName}}, congratulations! We would like to extend you an offer for {{vacancyTitle}}. You will receive the full details in a separate message.",
	},
	models.StatusRejected: {
		Subject: "Update on your application",
		Body:    "Hello {{candidateName}}, thank you for your interest in {{vacancyTitle}}. After careful review we have decided not to move forward with your application at this time.",
	},
}

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	// First, replace all known placeholders
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remove any remaining placeholders (missing values)
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
