package meta

import (
	"context"
	"fmt"
	"net/url"
)

// HideComment hides a comment from public view. The hide is irreversible
// from the core's perspective; callers must run the hide-criteria verifier
// first.
func (c *Client) HideComment(ctx context.Context, commentID string) (bool, error) {
	log := c.logger.WithField("comment_id", commentID)
	log.Debug("Attempting to hide comment")

	form := url.Values{}
	form.Set("is_hidden", "true")

	ok, err := c.postForm(ctx, fmt.Sprintf("/%s", commentID), form)
	if err != nil {
		log.WithError(err).Error("Failed to hide comment")
		return false, err
	}

	if ok {
		log.Info("Hidden comment")
	}
	return ok, nil
}
