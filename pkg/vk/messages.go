package vk

import (
	"context"
	"net/url"
	"strconv"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Message is an outgoing message.
type Message struct {
	PeerID     int64
	Text       string
	Attachment string // e.g. photo{owner}_{id}_{key}; empty for none
	Keyboard   *Keyboard
}

// SendMessage sends m and returns the new message id. random_id is always
// 0, which disables VK's duplicate suppression.
func (c *Client) SendMessage(ctx context.Context, m Message) (int64, error) {
	params := url.Values{
		"peer_id":   {strconv.FormatInt(m.PeerID, 10)},
		"random_id": {"0"},
	}
	if m.Text != "" {
		params.Set("message", m.Text)
	}
	if m.Attachment != "" {
		params.Set("attachment", m.Attachment)
	}
	if m.Keyboard != nil {
		kb, err := m.Keyboard.JSON()
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "encode keyboard")
		}
		params.Set("keyboard", kb)
	}

	var id int64
	if err := c.Call(ctx, "messages.send", params, &id); err != nil {
		return 0, err
	}
	return id, nil
}
