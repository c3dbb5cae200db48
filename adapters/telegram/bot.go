// Package telegram is the inbound/outbound transport adapter. It long
// polls the Bot API, routes commands and free text into the chat
// service, and falls back to a rendered HTML document whenever Telegram
// rejects an inline reply.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/shovelbot/shovel/adapters/htmldoc"
	"github.com/shovelbot/shovel/domain"
	"github.com/shovelbot/shovel/usecase"
	"github.com/shovelbot/shovel/utils/log"
)

const (
	tokenSettingsURL    = "https://huggingface.co/settings/tokens"
	clearCallbackPrefix = "clear_dialogue_"

	onboardingText = "Before starting, you need to add the bot token using the command " +
		"/add_token <token>. You can obtain the token by clicking the button below."
	missingTokenText = "You haven't added the token from Hugging Face. Please obtain the " +
		"token by clicking the button below, and then enter /add_token <token> to add it."

	tokenAddedText      = "Token added successfully."
	tokenUsageText      = "Usage: /add_token <token>"
	historyClearedText  = "Chat history cleared"
	neverTalkedText     = "So we never talked"
	notYourButtonText   = "This button is not for you."
	inferenceFailedText = "The model request failed. Please try again later."
)

type Bot struct {
	api *tgbotapi.BotAPI
	svc *usecase.ChatService
}

func NewBot(botToken string, svc *usecase.ChatService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}
	log.With(zap.String("username", api.Self.UserName)).Info("authorized on Telegram")
	return &Bot{api: api, svc: svc}, nil
}

// Run starts the long-polling loop. Blocks until the context is
// cancelled or the updates channel is closed. Each update is handled in
// its own goroutine.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			go b.handleCallback(ctx, update.CallbackQuery)
		case update.Message != nil && update.Message.Text != "":
			go b.handleMessage(ctx, update.Message)
		}
	}
	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = context.WithValue(ctx, "user_id", msg.From.ID)
	ctx = context.WithValue(ctx, "chat_id", msg.Chat.ID)

	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, onboardingText)
		reply.ReplyToMessageID = msg.MessageID
		reply.ReplyMarkup = tokenKeyboard()
		b.send(ctx, reply)
	case "add_token":
		b.registerToken(ctx, msg)
	default:
		b.relay(ctx, msg)
	}
}

func (b *Bot) registerToken(ctx context.Context, msg *tgbotapi.Message) {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, tokenUsageText))
		return
	}
	if err := b.svc.Register(ctx, msg.From.ID, token); err != nil {
		log.WithCtx(ctx).Error("failed to register token", zap.Error(err))
		b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, "Failed to store the token. Please try again."))
		return
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, tokenAddedText)
	reply.ReplyToMessageID = msg.MessageID
	b.send(ctx, reply)
}

// relay forwards one free-text message to the inference endpoint and
// delivers the generated reply, falling back to an HTML document when
// Telegram rejects the inline message.
func (b *Bot) relay(ctx context.Context, msg *tgbotapi.Message) {
	text, err := b.svc.Ask(ctx, msg.From.ID, msg.Text)
	if errors.Is(err, domain.ErrNoCredential) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, missingTokenText)
		reply.ReplyToMessageID = msg.MessageID
		reply.ReplyMarkup = tokenKeyboard()
		b.send(ctx, reply)
		return
	}
	if err != nil {
		log.WithCtx(ctx).Error("inference call failed", zap.Error(err))
		b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, inferenceFailedText))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = clearKeyboard(msg.From.ID)
	if _, err := b.api.Send(reply); err == nil {
		return
	}

	// Inline delivery rejected, deliver the reply as a document instead.
	log.WithCtx(ctx).Info("inline reply rejected, falling back to document")
	path, cleanup, err := htmldoc.Render(text)
	if err != nil {
		log.WithCtx(ctx).Error("failed to render fallback document", zap.Error(err))
		b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, inferenceFailedText))
		return
	}
	defer cleanup()

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(path))
	doc.ReplyToMessageID = msg.MessageID
	doc.ReplyMarkup = clearKeyboard(msg.From.ID)
	if _, err := b.api.Send(doc); err != nil {
		log.WithCtx(ctx).Error("failed to deliver fallback document", zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	ctx = context.WithValue(ctx, "user_id", query.From.ID)

	userID, ok := parseClearCallback(query.Data)
	if !ok {
		b.answer(ctx, query.ID, "")
		return
	}
	if userID != query.From.ID {
		b.answer(ctx, query.ID, notYourButtonText)
		return
	}

	switch err := b.svc.ClearHistory(userID); {
	case err == nil:
		b.answer(ctx, query.ID, "")
		// Private chat, so the chat id equals the user id.
		b.send(ctx, tgbotapi.NewMessage(userID, historyClearedText))
	case errors.Is(err, domain.ErrNoSession):
		b.answer(ctx, query.ID, neverTalkedText)
	default:
		log.WithCtx(ctx).Error("failed to clear history", zap.Error(err))
		b.answer(ctx, query.ID, "")
	}
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		log.WithCtx(ctx).Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.WithCtx(ctx).Error("failed to answer callback", zap.Error(err))
	}
}

// parseClearCallback extracts the user id embedded in a
// clear_dialogue_{user_id} callback payload.
func parseClearCallback(data string) (int64, bool) {
	raw, found := strings.CutPrefix(data, clearCallbackPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func tokenKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Get api key", tokenSettingsURL),
		),
	)
}

func clearKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"Clear the chat",
				clearCallbackPrefix+strconv.FormatInt(userID, 10),
			),
		),
	)
}
