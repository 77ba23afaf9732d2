package telegram

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/masterversa/acharya/internal/agentapi"
	"github.com/masterversa/acharya/internal/sessions"
)

func (b *Bot) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.countInbound("command")

	var firstName string
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}
	b.reply(ctx, update.Message.Chat.ID, welcomeText(firstName), nil)
}

func (b *Bot) handleHelp(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.countInbound("command")
	b.reply(ctx, update.Message.Chat.ID, helpText, nil)
}

func (b *Bot) handleNewSession(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID
	logger := b.logger.With("request_id", correlationID(), "user", userKey(update.Message.From))

	binding, err := b.sessions.Create(ctx, userKey(update.Message.From), userHandle(update.Message.From))
	if err != nil {
		logger.Error("session create failed", "error", err)
		b.countError("sessions", agentapi.Code(err))
		b.reply(ctx, chatID, "⚠️ Something went wrong while creating your session. Please try again later.", nil)
		return
	}

	logger.Info("session created", "session_id", binding.RemoteSessionID)
	if b.metrics != nil {
		b.metrics.ActiveSessions.Set(float64(b.sessions.Active()))
	}
	b.reply(ctx, chatID, sessionCreatedText(binding.RemoteSessionID), nil)
}

func (b *Bot) handleListSessions(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	list, err := b.sessions.List(ctx, userHandle(update.Message.From))
	if err != nil {
		b.logger.Error("session list failed", "error", err)
		b.countError("sessions", agentapi.Code(err))
		b.reply(ctx, chatID, "⚠️ Something went wrong while retrieving your sessions. Please try again later.", nil)
		return
	}
	if len(list) == 0 {
		b.reply(ctx, chatID, noSessionsText, nil)
		return
	}

	b.reply(ctx, chatID, "🔍 Your active sessions:\nClick to select one:", sessionKeyboard(list))
}

func (b *Bot) handleDeleteSession(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	binding, err := b.sessions.RequestDelete(ctx, userKey(update.Message.From))
	if err != nil {
		if errors.Is(err, sessions.ErrNoSession) {
			b.reply(ctx, chatID, noCurrentText, nil)
			return
		}
		b.logger.Error("delete request failed", "error", err)
		b.reply(ctx, chatID, "⚠️ Something went wrong. Please try again later.", nil)
		return
	}

	b.reply(ctx, chatID, deleteConfirmText(binding.RemoteSessionID), deleteKeyboard())
}

func (b *Bot) handleSelectSession(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	b.countInbound("callback")
	b.answerCallback(ctx, cq.ID)

	chatID, messageID, ok := callbackOrigin(cq)
	if !ok {
		return
	}

	sessionID, ok := selectedSessionID(cq.Data)
	if !ok {
		return
	}

	if _, err := b.sessions.Select(ctx, userKey(&cq.From), userHandle(&cq.From), sessionID); err != nil {
		b.logger.Error("session select failed", "error", err)
		b.editMessage(ctx, chatID, messageID, "⚠️ Could not select that session. Please try again.")
		return
	}
	b.editMessage(ctx, chatID, messageID, sessionSelectedText(sessionID))
}

func (b *Bot) handleConfirmDelete(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	b.countInbound("callback")
	b.answerCallback(ctx, cq.ID)

	chatID, messageID, ok := callbackOrigin(cq)
	if !ok {
		return
	}

	err := b.sessions.ConfirmDelete(ctx, userKey(&cq.From))
	switch {
	case err == nil:
		if b.metrics != nil {
			b.metrics.ActiveSessions.Set(float64(b.sessions.Active()))
		}
		b.editMessage(ctx, chatID, messageID, deleteSuccessText)
	case errors.Is(err, sessions.ErrNoSession), errors.Is(err, sessions.ErrNoPendingDelete):
		b.editMessage(ctx, chatID, messageID, "You don't have an active session to delete.")
	default:
		b.logger.Error("session delete failed", "error", err)
		b.countError("sessions", agentapi.Code(err))
		b.editMessage(ctx, chatID, messageID, "⚠️ Something went wrong while deleting your session.")
	}
}

func (b *Bot) handleCancelDelete(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	b.countInbound("callback")
	b.answerCallback(ctx, cq.ID)

	b.sessions.CancelDelete(userKey(&cq.From))

	if chatID, messageID, ok := callbackOrigin(cq); ok {
		b.editMessage(ctx, chatID, messageID, deleteCancelText)
	}
}

// handleMessage relays free text to the agent and returns the model's reply.
func (b *Bot) handleMessage(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	b.countInbound("text")

	chatID := msg.Chat.ID
	key := userKey(msg.From)
	handle := userHandle(msg.From)
	logger := b.logger.With("request_id", correlationID(), "user", key)

	res, err := b.sessions.Ensure(ctx, key, handle)
	if err != nil {
		logger.Error("auto session create failed", "error", err)
		b.countError("sessions", agentapi.Code(err))
		b.reply(ctx, chatID, "⚠️ Something went wrong. Please use /newsession to create a session manually.", nil)
		return
	}
	if res.Created {
		if b.metrics != nil {
			b.metrics.ActiveSessions.Set(float64(b.sessions.Active()))
		}
		b.reply(ctx, chatID, sessionAutoCreatedText(res.Binding.RemoteSessionID), nil)
	}

	b.sendTyping(ctx, chatID)

	runCtx, cancel := context.WithTimeout(ctx, b.runTimeout)
	defer cancel()

	raw, err := b.agent.Run(runCtx, handle, res.Binding.RemoteSessionID, msg.Text)
	if err != nil {
		logger.Error("run failed", "session_id", res.Binding.RemoteSessionID, "error", err)
		b.countError("agent", agentapi.Code(err))
		if sessionGone(err) {
			// The backend no longer knows this session; drop the binding so
			// the next message provisions a fresh one.
			b.sessions.Forget(key)
		}
		b.reply(ctx, chatID, runFailureText(err), nil)
		return
	}

	replyText := agentapi.ExtractReply(raw)

	// Artifact listing is best-effort; a failure only drops the notice.
	artifacts, err := b.agent.ListArtifacts(ctx, handle, res.Binding.RemoteSessionID)
	if err != nil {
		logger.Warn("artifact check failed", "error", err)
	} else if len(artifacts) > 0 {
		replyText += agentapi.ArtifactNotice
	}

	b.reply(ctx, chatID, replyText, nil)
}

// sessionGone reports whether the agent rejected the run because the session
// id no longer exists upstream.
func sessionGone(err error) bool {
	var apiErr *agentapi.Error
	return errors.As(err, &apiErr) &&
		apiErr.Code == agentapi.ErrCodeStatus &&
		apiErr.StatusCode == 404
}

// runFailureText distinguishes upstream rejections, which carry the server's
// error text, from transport problems.
func runFailureText(err error) string {
	var apiErr *agentapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == agentapi.ErrCodeStatus {
		return "❌ Failed to get a response. Error: " + apiErr.Body +
			"\n\nPlease try again or create a new session with /newsession"
	}
	return "⚠️ Something went wrong while processing your message. Please try again later."
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	_, err := b.api.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}
}

// callbackOrigin returns the chat and message the callback button lives on.
func callbackOrigin(cq *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	if cq.Message.Message == nil {
		return 0, 0, false
	}
	return cq.Message.Message.Chat.ID, cq.Message.Message.ID, true
}

func (b *Bot) countInbound(kind string) {
	if b.metrics != nil {
		b.metrics.MessageCounter.WithLabelValues("inbound", kind).Inc()
	}
}

func (b *Bot) countError(component string, code agentapi.ErrorCode) {
	if b.metrics != nil {
		b.metrics.ErrorCounter.WithLabelValues(component, string(code)).Inc()
	}
}
