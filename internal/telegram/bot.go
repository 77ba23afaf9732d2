// Package telegram runs the MasterversAcharya Telegram bot: command and
// callback handlers for session lifecycle, and a default handler relaying
// free-text messages to the agent API.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/masterversa/acharya/internal/agentapi"
	"github.com/masterversa/acharya/internal/infra"
	"github.com/masterversa/acharya/internal/observability"
	"github.com/masterversa/acharya/internal/sessions"
)

// Callback data for inline keyboard buttons.
const (
	callbackSelectPrefix  = "select_session:"
	callbackConfirmDelete = "confirm_delete"
	callbackCancelDelete  = "cancel_delete"
)

// Config configures the bot.
type Config struct {
	Token string
	// RateLimit is outbound messages per second; RateBurst the bucket size.
	RateLimit float64
	RateBurst int
	// RunTimeout bounds one message round trip through the agent.
	RunTimeout time.Duration

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Bot wires the Telegram transport to the session manager, the agent API,
// and the knowledge service.
type Bot struct {
	api       *bot.Bot
	sessions  *sessions.Manager
	agent     *agentapi.Client
	knowledge KnowledgeService

	limiter    *infra.RateLimiter
	runTimeout time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates the bot and registers all handlers. It does not start polling.
// knowledgeSvc may be nil, which disables the knowledge commands.
func New(cfg Config, manager *sessions.Manager, agent *agentapi.Client, knowledgeSvc KnowledgeService) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 25
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		sessions:   manager,
		agent:      agent,
		knowledge:  knowledgeSvc,
		limiter:    infra.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		runTimeout: cfg.RunTimeout,
		logger:     logger.With("component", "telegram"),
		metrics:    cfg.Metrics,
	}

	api, err := bot.New(cfg.Token, bot.WithDefaultHandler(b.handleMessage))
	if err != nil {
		return nil, err
	}
	b.api = api

	api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/newsession", bot.MatchTypePrefix, b.handleNewSession)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/listsessions", bot.MatchTypePrefix, b.handleListSessions)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/deletesession", bot.MatchTypePrefix, b.handleDeleteSession)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/ask", bot.MatchTypePrefix, b.handleAsk)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/perspective", bot.MatchTypePrefix, b.handlePerspective)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/compare", bot.MatchTypePrefix, b.handleCompare)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/daily", bot.MatchTypePrefix, b.handleDaily)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/meditate", bot.MatchTypePrefix, b.handleMeditate)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/dialogue", bot.MatchTypePrefix, b.handleDialogue)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/practice", bot.MatchTypePrefix, b.handlePractice)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/religions", bot.MatchTypePrefix, b.handleReligions)
	api.RegisterHandler(bot.HandlerTypeMessageText, "/philosophies", bot.MatchTypePrefix, b.handlePhilosophies)

	api.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackSelectPrefix, bot.MatchTypePrefix, b.handleSelectSession)
	api.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackConfirmDelete, bot.MatchTypeExact, b.handleConfirmDelete)
	api.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackCancelDelete, bot.MatchTypeExact, b.handleCancelDelete)

	return b, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("bot started")
	b.api.Start(ctx)
	b.logger.Info("bot stopped")
}

// reply sends text to chatID as Markdown, honoring the outbound rate limit.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	if err := b.limiter.Wait(ctx); err != nil {
		b.logger.Warn("rate limit wait cancelled", "error", err)
		return
	}

	_, err := b.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: markup,
	})
	if err != nil {
		b.logger.Error("send failed", "chat_id", chatID, "error", err)
		if b.metrics != nil {
			b.metrics.ErrorCounter.WithLabelValues("telegram", "send_failed").Inc()
		}
		return
	}
	if b.metrics != nil {
		b.metrics.MessageCounter.WithLabelValues("outbound", "text").Inc()
	}
}

// editMessage rewrites a previously sent message, used by callback handlers.
func (b *Bot) editMessage(ctx context.Context, chatID int64, messageID int, text string) {
	_, err := b.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		b.logger.Error("edit failed", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) answerCallback(ctx context.Context, id string) {
	_, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: id})
	if err != nil {
		b.logger.Debug("answer callback failed", "error", err)
	}
}

// correlationID tags one inbound update's log records.
func correlationID() string {
	return uuid.NewString()
}
