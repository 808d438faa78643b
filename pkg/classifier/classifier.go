// Package classifier wraps the external LLM classification collaborator.
// Classification is an opaque call returning a fixed schema; any transport
// or parse failure fails closed to the neutral default so a classifier
// outage can never propagate as a pipeline failure.
package classifier

import (
	"context"

	"github.com/ormstack/moderation-go/pkg/classification"
)

// Classifier produces a raw classification for a comment.
type Classifier interface {
	Classify(ctx context.Context, commentText, businessContext string) classification.Classification
}
