package vk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Event types handled by the bot.
const EventMessageNew = "message_new"

// DefaultWait is the long-poll wait in seconds.
const DefaultWait = 25

// Event is one Bots Long Poll update.
type Event struct {
	Type    string          `json:"type"`
	GroupID int64           `json:"group_id"`
	EventID string          `json:"event_id"`
	Object  json.RawMessage `json:"object"`
}

// IncomingMessage is the message object of a message_new event.
type IncomingMessage struct {
	ID     int64  `json:"id"`
	PeerID int64  `json:"peer_id"`
	FromID int64  `json:"from_id"`
	Text   string `json:"text"`
}

// MessageNew decodes the message of a message_new event.
func (e Event) MessageNew() (IncomingMessage, error) {
	if e.Type != EventMessageNew {
		return IncomingMessage{}, errors.New(errors.ErrCodeInvalidInput, "event %s is not %s", e.Type, EventMessageNew)
	}
	var obj struct {
		Message IncomingMessage `json:"message"`
	}
	if err := json.Unmarshal(e.Object, &obj); err != nil {
		return IncomingMessage{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode message_new")
	}
	return obj.Message, nil
}

// LongPoll receives community events. It is not safe for concurrent use.
type LongPoll struct {
	client  *Client
	groupID int64
	wait    int
	http    *http.Client

	server, key, ts string
	keepTS          bool // only the key expired; resume from ts after refresh
}

// NewLongPoll creates a long-poll listener for groupID. wait <= 0 uses
// DefaultWait.
func NewLongPoll(client *Client, groupID int64, wait int) *LongPoll {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &LongPoll{
		client:  client,
		groupID: groupID,
		wait:    wait,
		http:    &http.Client{Timeout: time.Duration(wait+10) * time.Second},
	}
}

type pollServer struct {
	Server string `json:"server"`
	Key    string `json:"key"`
	TS     string `json:"ts"`
}

type pollResponse struct {
	TS      json.Number `json:"ts"`
	Updates []Event     `json:"updates"`
	Failed  int         `json:"failed"`
}

// refresh fetches a new server and key. The ts is replaced too unless only
// the key expired.
func (lp *LongPoll) refresh(ctx context.Context) error {
	var s pollServer
	err := lp.client.Call(ctx, "groups.getLongPollServer",
		url.Values{"group_id": {strconv.FormatInt(lp.groupID, 10)}}, &s)
	if err != nil {
		return err
	}
	lp.server, lp.key = s.Server, s.Key
	if !lp.keepTS || lp.ts == "" {
		lp.ts = s.TS
	}
	lp.keepTS = false
	return nil
}

// Poll waits for one batch of events. A nil slice with a nil error means
// the wait elapsed or the session was renewed.
func (lp *LongPoll) Poll(ctx context.Context) ([]Event, error) {
	if lp.server == "" {
		if err := lp.refresh(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{
		"act":  {"a_check"},
		"key":  {lp.key},
		"ts":   {lp.ts},
		"wait": {strconv.Itoa(lp.wait)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lp.server+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "long poll request")
	}

	var resp pollResponse
	if err := lp.client.doWith(lp.http, req, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, unwrapRetryable(err), "long poll")
	}

	switch resp.Failed {
	case 0:
		lp.ts = resp.TS.String()
		return resp.Updates, nil
	case 1:
		// history outdated; continue from the ts the server gave
		lp.ts = resp.TS.String()
		return nil, nil
	case 2:
		// key expired; events since ts are still available
		lp.server, lp.keepTS = "", true
		return nil, nil
	default:
		// 3: information lost, start over from the server's ts
		lp.server, lp.keepTS = "", false
		return nil, nil
	}
}

// Listen polls until ctx is done or a request fails, calling handle for
// every event in order. It returns ctx.Err() on cancellation and the
// failure otherwise; the caller decides whether to reconnect.
func (lp *LongPoll) Listen(ctx context.Context, handle func(context.Context, Event)) error {
	for {
		events, err := lp.Poll(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			lp.server, lp.keepTS = "", false
			return err
		}
		for _, ev := range events {
			handle(ctx, ev)
		}
	}
}

func unwrapRetryable(err error) error {
	if re, ok := err.(*retryableError); ok {
		return re.err
	}
	return err
}
