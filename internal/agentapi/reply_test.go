package agentapi

import "testing"

func TestExtractReply_PrimarySchema(t *testing.T) {
	raw := []byte(`{"candidates":[{"content":{"parts":[{"text":"hello there"}],"role":"model"},"finish_reason":"STOP"}]}`)
	if got := ExtractReply(raw); got != "hello there" {
		t.Errorf("ExtractReply = %q, want %q", got, "hello there")
	}
}

func TestExtractReply_TopLevelList(t *testing.T) {
	raw := []byte(`[{"content":{"parts":[{"text":"from list"}]}}]`)
	if got := ExtractReply(raw); got != "from list" {
		t.Errorf("ExtractReply = %q, want %q", got, "from list")
	}
}

func TestExtractReply_LegacyResponse(t *testing.T) {
	raw := []byte(`{"response":{"parts":[{"text":"legacy text"}]}}`)
	if got := ExtractReply(raw); got != "legacy text" {
		t.Errorf("ExtractReply = %q, want %q", got, "legacy text")
	}
}

func TestExtractReply_DataMessages(t *testing.T) {
	raw := []byte(`{"data":{"messages":[
		{"role":"user","parts":[{"text":"question"}]},
		{"role":"model","parts":[{"text":"first "},{"text":"answer"}]},
		{"role":"user","parts":[{"text":"follow-up"}]}
	]}}`)
	if got := ExtractReply(raw); got != "first answer" {
		t.Errorf("ExtractReply = %q, want %q", got, "first answer")
	}
}

func TestExtractReply_DataMessagesPicksLastModel(t *testing.T) {
	raw := []byte(`{"data":{"messages":[
		{"role":"model","parts":[{"text":"older"}]},
		{"role":"model","parts":[{"text":"newest"}]}
	]}}`)
	if got := ExtractReply(raw); got != "newest" {
		t.Errorf("ExtractReply = %q, want %q", got, "newest")
	}
}

func TestExtractReply_BranchPriority(t *testing.T) {
	// Input matches both the primary and the legacy schema; the primary wins.
	raw := []byte(`{
		"candidates":[{"content":{"parts":[{"text":"primary"}]}}],
		"response":{"parts":[{"text":"legacy"}]}
	}`)
	if got := ExtractReply(raw); got != "primary" {
		t.Errorf("ExtractReply = %q, want %q (primary schema must win)", got, "primary")
	}
}

func TestExtractReply_EmptyPrimaryFallsThrough(t *testing.T) {
	raw := []byte(`{
		"candidates":[{"content":{"parts":[{"text":""}]}}],
		"response":{"parts":[{"text":"legacy"}]}
	}`)
	if got := ExtractReply(raw); got != "legacy" {
		t.Errorf("ExtractReply = %q, want %q (empty branch must not win)", got, "legacy")
	}
}

func TestExtractReply_IsTotal(t *testing.T) {
	malformed := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json at all`),
		[]byte(`{}`),
		[]byte(`{"candidates":[]}`),
		[]byte(`{"candidates":[{"content":{}}]}`),
		[]byte(`[]`),
		[]byte(`{"data":{"messages":[{"role":"user","parts":[{"text":"hi"}]}]}}`),
		[]byte(`42`),
	}

	for i, raw := range malformed {
		got := ExtractReply(raw)
		if got != FallbackReply {
			t.Errorf("input %d: ExtractReply = %q, want fallback", i, got)
		}
		if got == "" {
			t.Errorf("input %d: ExtractReply returned empty string", i)
		}
	}
}
