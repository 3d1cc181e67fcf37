package lib

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"ticketbari/src/lifecycle"
	"ticketbari/src/types"

	"github.com/pusher/pusher-http-go/v5"
)

var pusherClient *pusher.Client

func PusherEnabled() bool {
	return os.Getenv("PUSHER_APP_ID") != ""
}

func GetPusherClient() *pusher.Client {
	if pusherClient != nil {
		return pusherClient
	}
	pusherClient = &pusher.Client{
		AppID:   os.Getenv("PUSHER_APP_ID"),
		Key:     os.Getenv("PUSHER_KEY"),
		Secret:  os.Getenv("PUSHER_SECRET"),
		Cluster: os.Getenv("PUSHER_CLUSTER"),
		Secure:  true,
	}
	return pusherClient
}

// Trigger is the part of *pusher.Client the publisher needs.
type Trigger interface {
	Trigger(channel string, eventName string, data interface{}) error
}

// PusherPublisher pushes booking events to the recipient's private channel
// so open dashboards refresh without polling.
type PusherPublisher struct {
	Client Trigger
}

func UserChannel(userID uint) string {
	return fmt.Sprintf("private-user-%d", userID)
}

func (p *PusherPublisher) Publish(ctx context.Context, key string, payload any) error {
	event, ok := payload.(types.BookingEvent)
	if !ok {
		return fmt.Errorf("pusher: unsupported payload %T", payload)
	}
	return p.Client.Trigger(UserChannel(event.RecipientID), event.Type, event)
}

// ChannelAuthorizer signs private channel subscriptions. *pusher.Client
// implements it.
type ChannelAuthorizer interface {
	AuthorizePrivateChannel(params []byte) ([]byte, error)
}

// AuthorizeUserChannel signs a subscription request for userID's own channel.
// params is the form body sent by pusher-js (socket_id, channel_name).
func AuthorizeUserChannel(a ChannelAuthorizer, userID uint, params []byte) ([]byte, error) {
	values, err := url.ParseQuery(string(params))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrInvalidRequest, err.Error())
	}
	channel := values.Get("channel_name")
	if channel == "" || values.Get("socket_id") == "" {
		return nil, fmt.Errorf("%w: socket_id and channel_name are required", lifecycle.ErrInvalidRequest)
	}
	if channel != UserChannel(userID) {
		return nil, fmt.Errorf("channel %s: %w", channel, lifecycle.ErrForbidden)
	}
	res, err := a.AuthorizePrivateChannel(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrInvalidRequest, err.Error())
	}
	return res, nil
}
