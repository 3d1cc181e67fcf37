package lib

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"ticketbari/src/lifecycle"
	"ticketbari/src/types"

	"github.com/pusher/pusher-http-go/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTrigger struct {
	channel, event string
	data           any
}

func (r *recordingTrigger) Trigger(channel string, eventName string, data interface{}) error {
	r.channel, r.event, r.data = channel, eventName, data
	return nil
}

func TestPusherPublisher(t *testing.T) {
	rec := &recordingTrigger{}
	p := &PusherPublisher{Client: rec}

	event := types.BookingEvent{Type: types.EVENT_BOOKING_ACCEPTED, BookingID: 3, UserID: 4, RecipientID: 11}
	require.NoError(t, p.Publish(context.Background(), "booking:3", event))
	assert.Equal(t, "private-user-11", rec.channel)
	assert.Equal(t, types.EVENT_BOOKING_ACCEPTED, rec.event)
	assert.Equal(t, event, rec.data)

	assert.Error(t, p.Publish(context.Background(), "x", "not an event"))
}

func TestAuthorizeUserChannel(t *testing.T) {
	c := &pusher.Client{AppID: "1", Key: "pk_test", Secret: "ps_test"}
	params := func(channel string) []byte {
		return []byte(fmt.Sprintf("socket_id=1234.5678&channel_name=%s", channel))
	}

	res, err := AuthorizeUserChannel(c, 11, params("private-user-11"))
	require.NoError(t, err)
	assert.Contains(t, string(res), `"auth":"pk_test:`)

	_, err = AuthorizeUserChannel(c, 11, params("private-user-12"))
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = AuthorizeUserChannel(c, 11, []byte("channel_name=private-user-11"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidRequest)

	_, err = AuthorizeUserChannel(c, 11, []byte("%zz"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidRequest)
}

type failingAuthorizer struct{}

func (failingAuthorizer) AuthorizePrivateChannel([]byte) ([]byte, error) {
	return nil, errors.New("invalid socket id")
}

func TestAuthorizeUserChannelSignerError(t *testing.T) {
	_, err := AuthorizeUserChannel(failingAuthorizer{}, 3, []byte("socket_id=bad&channel_name=private-user-3"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidRequest)
}
