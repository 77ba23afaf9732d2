package agentapi

import (
	"encoding/json"
	"strings"
)

// FallbackReply is returned when no known response shape yields text.
const FallbackReply = "I received your message but couldn't generate a proper response."

// ArtifactNotice is appended to a reply when the session carries artifacts
// that cannot be rendered inline in chat.
const ArtifactNotice = "\n\n📎 *Note:* There are artifacts available in this session that can't be displayed in Telegram."

// replyExtractors is the ordered list of response shapes the backend has
// been observed to emit. First non-empty result wins. The upstream contract
// is versioned and unstable; supporting a new shape means appending one
// entry here.
var replyExtractors = []func(raw []byte) string{
	extractCandidates,
	extractTopLevelList,
	extractLegacyResponse,
	extractDataMessages,
}

// ExtractReply locates the assistant's text inside a run response. It is
// pure and total: any input, including garbage, yields a non-empty string.
func ExtractReply(raw []byte) string {
	for _, extract := range replyExtractors {
		if text := extract(raw); text != "" {
			return text
		}
	}
	return FallbackReply
}

type contentEnvelope struct {
	Content struct {
		Parts []Part `json:"parts"`
	} `json:"content"`
}

// extractCandidates handles the primary schema:
// {"candidates":[{"content":{"parts":[{"text":...}]}}]}.
func extractCandidates(raw []byte) string {
	var body struct {
		Candidates []contentEnvelope `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Candidates) == 0 {
		return ""
	}
	return firstPartText(body.Candidates[0].Content.Parts)
}

// extractTopLevelList handles responses that are themselves a list:
// [{"content":{"parts":[{"text":...}]}}].
func extractTopLevelList(raw []byte) string {
	var items []contentEnvelope
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	if len(items) == 0 {
		return ""
	}
	return firstPartText(items[0].Content.Parts)
}

// extractLegacyResponse handles the legacy schema:
// {"response":{"parts":[{"text":...}]}}.
func extractLegacyResponse(raw []byte) string {
	var body struct {
		Response struct {
			Parts []Part `json:"parts"`
		} `json:"response"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return firstPartText(body.Response.Parts)
}

// extractDataMessages handles {"data":{"messages":[...]}}: messages are
// scanned from the end, and the first one with role "model" contributes the
// concatenation of all its part texts.
func extractDataMessages(raw []byte) string {
	var body struct {
		Data struct {
			Messages []Message `json:"messages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	messages := body.Data.Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "model" {
			continue
		}
		var b strings.Builder
		for _, part := range messages[i].Parts {
			b.WriteString(part.Text)
		}
		return b.String()
	}
	return ""
}

func firstPartText(parts []Part) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
