package knowledge

import (
	"sort"
	"strings"
	"time"
)

// freeTextKeyLimit bounds the free-text fragment folded into cache keys.
// Two long queries sharing the same 50-rune prefix alias to one cache slot;
// that precision loss is accepted to keep keys small.
const freeTextKeyLimit = 50

// buildKey constructs a deterministic cache key from an operation
// discriminator, a primary identifier, an optional secondary category, and
// an optional free-text fragment. Distinct (op, primary, secondary) triples
// never collide.
func buildKey(op, primary, secondary, freeText string) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('-')
	b.WriteString(primary)
	if secondary != "" {
		b.WriteByte('-')
		b.WriteString(secondary)
	}
	if freeText != "" {
		b.WriteByte('-')
		b.WriteString(truncateKeyText(freeText))
	}
	return b.String()
}

// buildSetKey constructs a key over a participant set. The set is sorted
// before joining, so the same participants yield the same key regardless of
// input order.
func buildSetKey(op string, participants []string, freeText string) string {
	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)
	return buildKey(op, strings.Join(sorted, "-"), "", freeText)
}

// buildDailyKey constructs a date-scoped key: the calendar date (local
// clock, day granularity) is part of the key, so a new day is a new slot
// whatever the entry TTL says.
func buildDailyKey(now time.Time, tradition, theme string) string {
	key := "daily-" + now.Format("2006-01-02")
	if tradition != "" {
		key += "-" + tradition
	}
	if theme != "" {
		key += "-" + theme
	}
	return key
}

// truncateKeyText caps free text at freeTextKeyLimit runes.
func truncateKeyText(s string) string {
	runes := []rune(s)
	if len(runes) <= freeTextKeyLimit {
		return s
	}
	return string(runes[:freeTextKeyLimit])
}
