// Package notify tells post authors about new comments.
package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/models"
)

type Notifier interface {
	CommentAdded(ctx context.Context, post *models.Post, comment *models.Comment) error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) CommentAdded(context.Context, *models.Post, *models.Comment) error { return nil }

type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMS texts the post author when someone else comments, if the author
// has a phone number on file.
type SMS struct {
	api  messageSender
	from string
}

func NewSMS(accountSID, authToken, from string) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMS{api: client.Api, from: from}
}

func (s *SMS) CommentAdded(_ context.Context, post *models.Post, comment *models.Comment) error {
	if post.Author.Phone == "" || post.AuthorID == comment.AuthorID {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(post.Author.Phone)
	params.SetFrom(s.from)
	params.SetBody(Body(post, comment))

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send comment sms: %w", err)
	}
	if msg != nil && msg.Sid != nil {
		logger.Debug("comment sms sent", map[string]any{"sid": *msg.Sid, "post_id": post.ID})
	}
	return nil
}

// Body is the message text, trimmed to a single SMS segment.
func Body(post *models.Post, comment *models.Comment) string {
	body := fmt.Sprintf("%s commented on %q: %s", comment.Author.Username, post.Title, comment.Text)
	runes := []rune(body)
	if len(runes) > 160 {
		body = string(runes[:157]) + "..."
	}
	return body
}
