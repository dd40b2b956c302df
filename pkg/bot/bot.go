// Package bot answers VK community messages with postcards.
//
// Every message_new event gets a reply with a freshly composed postcard on
// a randomly chosen template and an inline "one more" keyboard. When the
// pipeline fails the reply is an apology with no attachment, and the
// failure is logged here, once.
package bot

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/postcard"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/vk"
)

// Apology is sent instead of a postcard when generation fails.
const Apology = "Небольшие сетевые неполадки &#128030;. Пожалуйста, повторите попытку &#129303;"

// DefaultPause is the wait before reconnecting after a long-poll failure.
const DefaultPause = 15 * time.Second

// Listener delivers events until ctx ends or the connection fails.
// *vk.LongPoll implements it.
type Listener interface {
	Listen(ctx context.Context, handle func(context.Context, vk.Event)) error
}

// Sender sends messages. *vk.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, m vk.Message) (int64, error)
}

// Generator produces a postcard for a destination.
// *postcard.Service implements it.
type Generator interface {
	Generate(ctx context.Context, tpl template.Template, bank *phrases.Bank, destination string) (postcard.Result, error)
}

// Bot ties a listener, the postcard pipeline and a sender together.
type Bot struct {
	Listener  Listener
	Sender    Sender
	Generator Generator
	Templates *template.Set
	Bank      *phrases.Bank
	Logger    *log.Logger   // nil uses log.Default()
	Pause     time.Duration // 0 uses DefaultPause

	mu  sync.Mutex
	rng *rand.Rand
}

// SetRand fixes the template choice source, for tests.
func (b *Bot) SetRand(r *rand.Rand) {
	b.mu.Lock()
	b.rng = r
	b.mu.Unlock()
}

// Run listens for events until ctx is cancelled. A failed connection is
// retried after a fixed pause, forever.
func (b *Bot) Run(ctx context.Context) error {
	pause := b.Pause
	if pause <= 0 {
		pause = DefaultPause
	}
	logger := b.logger()
	logger.Info("bot started", "templates", len(b.Templates.Templates))

	for {
		err := b.Listener.Listen(ctx, b.Handle)
		if ctx.Err() != nil {
			logger.Info("bot stopped")
			return nil
		}
		logger.Warn("long poll interrupted, reconnecting", "pause", pause, "err", err)

		select {
		case <-ctx.Done():
			logger.Info("bot stopped")
			return nil
		case <-time.After(pause):
		}
	}
}

// Handle processes one event. Events other than message_new are ignored.
func (b *Bot) Handle(ctx context.Context, ev vk.Event) {
	if ev.Type != vk.EventMessageNew {
		return
	}
	msg, err := ev.MessageNew()
	if err != nil {
		b.logger().Error("bad message_new event", "event", ev.EventID, "err", err)
		return
	}
	_ = b.Reply(ctx, msg.PeerID)
}

// Reply sends one postcard, or the apology, to peer. The returned error is
// the send failure, if any; pipeline failures are logged and answered with
// the apology.
func (b *Bot) Reply(ctx context.Context, peer int64) error {
	tpl := b.pick()
	dest := strconv.FormatInt(peer, 10)

	out := vk.Message{PeerID: peer, Keyboard: vk.MoreKeyboard()}
	res, err := b.Generator.Generate(ctx, tpl, b.Bank, dest)
	if postcard.StatusOf(err) == postcard.StatusOK {
		out.Attachment = res.Link
	} else {
		b.logger().Error("generate postcard failed",
			"template", tpl.ID, "peer", peer, "code", errors.GetCode(err), "err", err)
		out.Text = Apology
	}

	if _, err := b.Sender.SendMessage(ctx, out); err != nil {
		b.logger().Error("send message failed", "peer", peer, "attachment", out.Attachment, "err", err)
		return err
	}
	b.logger().Debug("replied", "peer", peer, "template", tpl.ID, "cached", res.Cached)
	return nil
}

func (b *Bot) pick() template.Template {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Templates.Pick(b.rng)
}

func (b *Bot) logger() *log.Logger {
	if b.Logger == nil {
		return log.Default()
	}
	return b.Logger
}
