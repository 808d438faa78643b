package meta

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// ReplyToComment posts a reply under an existing comment.
func (c *Client) ReplyToComment(ctx context.Context, commentID, message string) (bool, error) {
	log := c.logger.WithFields(logrus.Fields{
		"comment_id":     commentID,
		"message_length": len(message),
	})
	log.Debug("Attempting to reply to comment")

	form := url.Values{}
	form.Set("message", message)

	ok, err := c.postForm(ctx, fmt.Sprintf("/%s/replies", commentID), form)
	if err != nil {
		log.WithError(err).Error("Failed to reply to comment")
		return false, err
	}

	if ok {
		log.Info("Replied to comment")
	}
	return ok, nil
}
