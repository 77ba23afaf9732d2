package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/masterversa/acharya/internal/knowledge"
)

// KnowledgeService is the slice of the knowledge layer the bot commands use.
type KnowledgeService interface {
	GetInformation(ctx context.Context, religion, category, query string) knowledge.Result
	GetPerspective(ctx context.Context, philosophy, topic string) knowledge.Result
	Compare(ctx context.Context, religion1, religion2, aspect string) knowledge.Result
	DailyInsight(ctx context.Context, tradition, theme string) knowledge.Result
	MeditationGuide(ctx context.Context, tradition string, duration int, focus string) knowledge.Result
	InterfaithDialogue(ctx context.Context, topic string, participants []string) knowledge.Result
	PracticeGuide(ctx context.Context, practice, tradition, level string) knowledge.Result
	AvailableReligions() knowledge.Result
	AvailablePhilosophies() knowledge.Result
}

// handleAsk serves "/ask <religion> [question...]".
func (b *Bot) handleAsk(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /ask <religion> [question]\nExample: /ask buddhism what are the four noble truths", nil)
		return
	}
	religion := args[0]
	query := strings.Join(args[1:], " ")

	b.sendTyping(ctx, chatID)
	res := b.knowledge.GetInformation(ctx, religion, "", query)
	b.reply(ctx, chatID, knowledgeReplyText(res, "content"), nil)
}

// handlePerspective serves "/perspective <philosophy> [topic...]".
func (b *Bot) handlePerspective(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /perspective <philosophy> [topic]\nExample: /perspective stoicism adversity", nil)
		return
	}
	philosophy := args[0]
	topic := strings.Join(args[1:], " ")

	b.sendTyping(ctx, chatID)
	res := b.knowledge.GetPerspective(ctx, philosophy, topic)
	b.reply(ctx, chatID, knowledgeReplyText(res, "content"), nil)
}

// handleCompare serves "/compare <religion1> <religion2> [aspect...]".
func (b *Bot) handleCompare(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 2 {
		b.reply(ctx, chatID, "Usage: /compare <religion1> <religion2> [aspect]\nExample: /compare buddhism hinduism meditation", nil)
		return
	}
	aspect := strings.Join(args[2:], " ")

	b.sendTyping(ctx, chatID)
	res := b.knowledge.Compare(ctx, args[0], args[1], aspect)
	b.reply(ctx, chatID, knowledgeReplyText(res, "comparison"), nil)
}

// handleDaily serves "/daily [tradition] [theme...]".
func (b *Bot) handleDaily(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	var tradition, theme string
	if len(args) > 0 {
		tradition = args[0]
	}
	if len(args) > 1 {
		theme = strings.Join(args[1:], " ")
	}

	b.sendTyping(ctx, chatID)
	res := b.knowledge.DailyInsight(ctx, tradition, theme)
	b.reply(ctx, chatID, knowledgeReplyText(res, "full_insight"), nil)
}

// handleMeditate serves "/meditate [minutes] [focus...]".
func (b *Bot) handleMeditate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	duration, focus, ok := parseMeditateArgs(commandArgs(update.Message.Text))
	if !ok {
		b.reply(ctx, chatID, "Usage: /meditate [minutes] [focus]\nExample: /meditate 15 breath", nil)
		return
	}

	b.sendTyping(ctx, chatID)
	res := b.knowledge.MeditationGuide(ctx, "", duration, focus)
	b.reply(ctx, chatID, knowledgeReplyText(res, "guide"), nil)
}

// handleDialogue serves "/dialogue <topic...>" with the default participant
// set.
func (b *Bot) handleDialogue(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /dialogue <topic>\nExample: /dialogue the nature of compassion", nil)
		return
	}
	topic := strings.Join(args, " ")

	b.sendTyping(ctx, chatID)
	res := b.knowledge.InterfaithDialogue(ctx, topic, nil)
	b.reply(ctx, chatID, knowledgeReplyText(res, "dialogue"), nil)
}

// handlePractice serves "/practice <practice> [level]".
func (b *Bot) handlePractice(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /practice <practice> [level]\nExample: /practice meditation intermediate", nil)
		return
	}
	var level string
	if len(args) > 1 {
		level = args[1]
	}

	b.sendTyping(ctx, chatID)
	res := b.knowledge.PracticeGuide(ctx, args[0], "", level)
	b.reply(ctx, chatID, knowledgeReplyText(res, "guide"), nil)
}

func (b *Bot) handleReligions(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")

	res := b.knowledge.AvailableReligions()
	b.reply(ctx, update.Message.Chat.ID, taxonomyReplyText("🕉 *Traditions I can discuss:*", res, "religions"), nil)
}

func (b *Bot) handlePhilosophies(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || b.knowledge == nil {
		return
	}
	b.countInbound("command")

	res := b.knowledge.AvailablePhilosophies()
	b.reply(ctx, update.Message.Chat.ID, taxonomyReplyText("📜 *Philosophies I can discuss:*", res, "philosophies"), nil)
}

// commandArgs splits off everything after the command word.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// parseMeditateArgs interprets "/meditate" arguments. An absent duration
// means the standard session length; an unparsable one is a usage error.
// The service validates the range itself, so explicit out-of-range values
// pass through and come back as validation messages.
func parseMeditateArgs(args []string) (duration int, focus string, ok bool) {
	duration = knowledge.DefaultMeditationMinutes
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, "", false
		}
		duration = n
	}
	if len(args) > 1 {
		focus = strings.Join(args[1:], " ")
	}
	return duration, focus, true
}

// knowledgeReplyText renders a knowledge result: the named content field on
// success, the validation message on error.
func knowledgeReplyText(res knowledge.Result, contentField string) string {
	if res.IsError() {
		return "❌ " + res.Message
	}
	if content, ok := res.Data[contentField].(string); ok && content != "" {
		return content
	}
	return "❌ No content was generated. Please try again."
}

// taxonomyReplyText renders a name listing as a bulleted message.
func taxonomyReplyText(header string, res knowledge.Result, field string) string {
	names, _ := res.Data[field].([]string)
	if len(names) == 0 {
		return "❌ No entries available."
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, name := range names {
		b.WriteString("• ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}
