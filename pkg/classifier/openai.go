package classifier

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ormstack/moderation-go/pkg/classification"
)

const systemPrompt = "You are an expert content moderator for social media comments."

// OpenAIClassifier classifies comments with an OpenAI chat model through
// langchaingo.
type OpenAIClassifier struct {
	llm    llms.Model
	config *Config
	logger *logrus.Logger
}

// NewOpenAIClassifier creates the classifier from config.
func NewOpenAIClassifier(config *Config) (*OpenAIClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	llm, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return &OpenAIClassifier{
		llm:    llm,
		config: config,
		logger: config.Logger,
	}, nil
}

// Classify runs the moderation prompt against the model and parses the
// structured result. Failures of any kind return the neutral default: zero
// confidence then routes the comment to the low-confidence escalation path.
func (c *OpenAIClassifier) Classify(ctx context.Context, commentText, businessContext string) classification.Classification {
	log := c.logger.WithFields(logrus.Fields{
		"model":       c.config.Model,
		"text_length": len(commentText),
	})

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt := buildClassificationPrompt(commentText, businessContext)

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, systemPrompt+"\n\n"+prompt,
		llms.WithTemperature(c.config.Temperature),
		llms.WithMaxTokens(c.config.MaxTokens),
	)
	if err != nil {
		log.WithError(err).Error("Classification call failed, returning neutral default")
		return classification.Neutral()
	}

	result, err := parseClassification(completion)
	if err != nil {
		log.WithError(err).Warn("Could not parse classification response, returning neutral default")
		return classification.Neutral()
	}

	log.WithFields(logrus.Fields{
		"sentiment":  result.Sentiment,
		"urgency":    result.Urgency,
		"intent":     result.Intent,
		"toxicity":   result.ToxicityScore,
		"confidence": result.Confidence,
	}).Debug("Comment classified")

	return result
}
