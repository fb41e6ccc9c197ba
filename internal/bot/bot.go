// Package bot is the Telegram front end of the lookup pipeline.
package bot

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sjsage522/divulgador/internal/link"
	"sjsage522/divulgador/internal/product"
	"sjsage522/divulgador/logger"
	apperrors "sjsage522/divulgador/pkg/errors"
	"sjsage522/divulgador/services/publisher"
)

const defaultHandlerTimeout = 30 * time.Second

// Sender delivers replies. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Lookup is the product pipeline.
type Lookup interface {
	Resolve(ctx context.Context, text string) (*product.Product, error)
	Search(ctx context.Context, term string, limit int, categoryID int64) ([]product.Summary, error)
}

// Bot dispatches Telegram updates to the lookup pipeline.
type Bot struct {
	sender         Sender
	lookup         Lookup
	publisher      publisher.Publisher
	shortDomains   []string
	handlerTimeout time.Duration
	searchLimit    int
	logger         *logger.Logger

	wg sync.WaitGroup
}

// Option is custom configuration of Bot.
type Option func(b *Bot)

// WithPublisher publishes every resolved product.
func WithPublisher(p publisher.Publisher) Option {
	return func(b *Bot) {
		b.publisher = p
	}
}

// WithShortDomains sets the short link hosts recognized in plain messages.
func WithShortDomains(domains []string) Option {
	return func(b *Bot) {
		b.shortDomains = domains
	}
}

// WithHandlerTimeout bounds the handling of one update.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.handlerTimeout = d
	}
}

// WithSearchLimit sets the number of search results shown.
func WithSearchLimit(limit int) Option {
	return func(b *Bot) {
		b.searchLimit = limit
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bot) {
		b.logger = l
	}
}

// New creates a Bot.
func New(sender Sender, lookup Lookup, opts ...Option) *Bot {
	b := &Bot{
		sender:         sender,
		lookup:         lookup,
		handlerTimeout: defaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.ForBot()
	}
	return b
}

// Run handles updates until ctx is done or the channel is closed, each
// update in its own goroutine. It waits for running handlers before
// returning.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.logger.Info().Msg("Bot started")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate handles one update within the handler timeout.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	if !msg.IsCommand() {
		if link.HasLink(msg.Text, b.shortDomains) {
			b.handleProduct(ctx, msg, msg.Text)
		}
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		b.reply(msg, msgWelcome)
	case "help":
		b.reply(msg, msgHelp)
	case "buscar":
		b.handleSearch(ctx, msg, args)
	case "produto":
		b.handleProduct(ctx, msg, args)
	default:
		b.reply(msg, msgUnknownCommand)
	}
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message, term string) {
	if term == "" {
		b.reply(msg, msgAskTerm)
		return
	}

	results, err := b.lookup.Search(ctx, term, b.searchLimit, 0)
	if err != nil {
		b.reply(msg, errorMessage(err))
		return
	}
	if len(results) == 0 {
		b.reply(msg, msgNotFound)
		return
	}

	b.reply(msg, renderSearch(results))
}

func (b *Bot) handleProduct(ctx context.Context, msg *tgbotapi.Message, text string) {
	if text == "" {
		b.reply(msg, msgAskLink)
		return
	}

	p, err := b.lookup.Resolve(ctx, text)
	if err != nil {
		b.reply(msg, errorMessage(err))
		return
	}

	b.reply(msg, renderProduct(p))
	b.publish(ctx, p)
}

// publish appends the resolved product to the lookup stream
func (b *Bot) publish(ctx context.Context, p *product.Product) {
	if b.publisher == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to encode product")
		return
	}
	if err := b.publisher.Publish(ctx, p.Ref().String(), data); err != nil {
		logger.ForPublisher().Warn().Err(err).Str("ref", p.Ref().String()).Msg("Failed to publish lookup")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.DisableWebPagePreview = true

	if _, err := b.sender.Send(out); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to send reply")
	}
}

// errorMessage maps a pipeline error to the user facing copy
func errorMessage(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNormalization:
		return msgLinkNotValid
	case apperrors.ErrorTypeNotFound:
		return msgNotFound
	case apperrors.ErrorTypeValidation:
		return msgAskTerm
	default:
		return msgSearchError
	}
}
