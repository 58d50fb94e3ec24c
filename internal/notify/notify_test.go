package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/blogicum/blogicum/internal/models"
)

type fakeSender struct {
	sent []*twilioApi.CreateMessageParams
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.sent = append(f.sent, params)
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSCommentAdded(t *testing.T) {
	fake := &fakeSender{}
	sms := &SMS{api: fake, from: "+15550000000"}

	post := &models.Post{ID: 1, Title: "Trip", AuthorID: 1, Author: models.User{ID: 1, Phone: "+15551112222"}}
	comment := &models.Comment{Text: "Nice!", AuthorID: 2, Author: models.User{ID: 2, Username: "bob"}}

	require.NoError(t, sms.CommentAdded(context.Background(), post, comment))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "+15551112222", *fake.sent[0].To)
	assert.Equal(t, "+15550000000", *fake.sent[0].From)
	assert.Equal(t, `bob commented on "Trip": Nice!`, *fake.sent[0].Body)
}

func TestSMSSkips(t *testing.T) {
	fake := &fakeSender{}
	sms := &SMS{api: fake, from: "+15550000000"}

	noPhone := &models.Post{AuthorID: 1, Author: models.User{ID: 1}}
	require.NoError(t, sms.CommentAdded(context.Background(), noPhone, &models.Comment{AuthorID: 2}))

	own := &models.Post{AuthorID: 1, Author: models.User{ID: 1, Phone: "+15551112222"}}
	require.NoError(t, sms.CommentAdded(context.Background(), own, &models.Comment{AuthorID: 1}))

	assert.Empty(t, fake.sent)
}

func TestBodyTruncated(t *testing.T) {
	body := Body(&models.Post{Title: "T"}, &models.Comment{Text: strings.Repeat("я", 300)})
	assert.Equal(t, 160, len([]rune(body)))
	assert.True(t, strings.HasSuffix(body, "..."))
}
