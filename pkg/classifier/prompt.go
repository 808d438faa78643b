package classifier

import "fmt"

func buildClassificationPrompt(commentText, businessContext string) string {
	if businessContext == "" {
		businessContext = "General business"
	}

	return fmt.Sprintf(`Analyze this social media comment and classify it according to the following criteria:

Comment: %q
Business Context: %s

Please provide a JSON response with these exact fields:
{
    "sentiment": "positive|neutral|negative",
    "urgency": "low|medium|high",
    "intent": "question|complaint|compliment|spam|general",
    "toxicity_score": 0-10,
    "requires_response": true/false,
    "suggested_action": "reply|hide|escalate|ignore",
    "confidence": 0-100
}

Consider:
- Positive sentiment: compliments, satisfaction, recommendations
- Negative sentiment: complaints, dissatisfaction, criticism
- High urgency: legal threats, severe complaints, viral negative content
- Medium urgency: legitimate complaints, specific issues
- Low urgency: general questions, positive feedback
- Toxicity score: 7+ should be hidden, 5-6 monitored, <5 normal`, commentText, businessContext)
}
