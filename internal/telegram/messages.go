package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/masterversa/acharya/internal/agentapi"
)

const helpText = "🧘 *MasterversAcharya Bot Commands:*\n\n" +
	"/start - Welcome message\n" +
	"/help - Show this help message\n" +
	"/newsession - Create a new conversation session\n" +
	"/listsessions - List your active sessions\n" +
	"/deletesession - Delete your current session\n" +
	"/ask <religion> [question] - Learn about a religion\n" +
	"/perspective <philosophy> [topic] - A philosophical perspective\n" +
	"/compare <religion1> <religion2> [aspect] - Compare two traditions\n" +
	"/daily [tradition] [theme] - Spiritual insight of the day\n" +
	"/meditate [minutes] [focus] - Guided meditation script\n" +
	"/dialogue <topic> - An interfaith dialogue on a topic\n" +
	"/practice <practice> [level] - Guide for a spiritual practice\n" +
	"/religions - Traditions I can discuss\n" +
	"/philosophies - Philosophies I can discuss\n\n" +
	"Simply type a message to ask about Buddhism, meditation, or request a meditation guide!"

const (
	noSessionsText    = "You don't have any active sessions. Use /newsession to create one."
	noCurrentText     = "You don't have an active session. Use /newsession to create one."
	deleteCancelText  = "Session deletion cancelled."
	deleteSuccessText = "✅ Session deleted successfully!"
)

func welcomeText(firstName string) string {
	name := firstName
	if name == "" {
		name = "friend"
	}
	return fmt.Sprintf("🙏 Welcome to MasterversAcharya Bot, %s!\n\n"+
		"I can help you learn about Buddhism, meditation, and more. "+
		"Use /newsession to start a new conversation or simply ask me a question.", name)
}

func sessionCreatedText(sessionID string) string {
	return fmt.Sprintf("✅ New session created successfully!\nSession ID: `%s`\n\n"+
		"You can now start asking questions.", sessionID)
}

func sessionAutoCreatedText(sessionID string) string {
	return fmt.Sprintf("✨ I've created a new session for you automatically.\nSession ID: `%s`", sessionID)
}

func sessionSelectedText(sessionID string) string {
	return fmt.Sprintf("✅ Selected session: `%s`\n\nYou can now continue your conversation.", sessionID)
}

func deleteConfirmText(sessionID string) string {
	return fmt.Sprintf("Are you sure you want to delete your current session?\nSession ID: `%s`", sessionID)
}

// userHandle maps a Telegram user to the handle used as the agent API user
// id. Users without a username get a synthetic one from their numeric id.
func userHandle(user *models.User) string {
	if user == nil {
		return ""
	}
	if user.Username != "" {
		return user.Username
	}
	return "user" + strconv.FormatInt(user.ID, 10)
}

func userKey(user *models.User) string {
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}

// sessionButtonLabel renders one session row for the selection keyboard.
// Long ids are truncated for display only; the callback carries the full id.
func sessionButtonLabel(s agentapi.Session) string {
	displayID := s.ID
	if len(displayID) > 10 {
		displayID = displayID[:8] + "..."
	}
	created := s.CreatedAt
	if created == "" {
		created = "Unknown date"
	}
	return fmt.Sprintf("Session %s (%s)", displayID, created)
}

// sessionKeyboard builds the inline keyboard for /listsessions, one button
// per session.
func sessionKeyboard(list []agentapi.Session) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(list))
	for _, s := range list {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         sessionButtonLabel(s),
			CallbackData: callbackSelectPrefix + s.ID,
		}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// deleteKeyboard builds the yes/no confirmation keyboard for /deletesession.
func deleteKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "✅ Yes, delete it", CallbackData: callbackConfirmDelete},
			{Text: "❌ No, keep it", CallbackData: callbackCancelDelete},
		}},
	}
}

// selectedSessionID extracts the session id from select_session callback data.
func selectedSessionID(data string) (string, bool) {
	id, ok := strings.CutPrefix(data, callbackSelectPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
