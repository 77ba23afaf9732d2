// Package knowledge answers structured spiritual-knowledge queries by
// prompting a generative model, memoizing results in a TTL cache keyed by
// the query parameters.
package knowledge

import "sort"

// Religions maps known religion identifiers to their knowledge-base ids.
var Religions = map[string]int{
	"christianity":   1,
	"islam":          2,
	"hinduism":       3,
	"buddhism":       4,
	"judaism":        5,
	"sikhism":        6,
	"taoism":         7,
	"jainism":        8,
	"shintoism":      9,
	"zoroastrianism": 10,
	"bahai":          11,
	"confucianism":   12,
	"atheism":        13,
	"agnosticism":    14,
	"humanism":       15,
}

// Philosophies maps known philosophical traditions to their ids.
var Philosophies = map[string]int{
	"stoicism":       1,
	"existentialism": 2,
	"nihilism":       3,
	"pragmatism":     4,
	"utilitarianism": 5,
	"hedonism":       6,
	"rationalism":    7,
	"empiricism":     8,
	"idealism":       9,
	"materialism":    10,
}

// Categories describes the question categories folded into prompts.
var Categories = map[string]string{
	"general":      "General religious and spiritual information",
	"rituals":      "Religious rituals and practices",
	"philosophy":   "Philosophy and ethics",
	"life":         "Life guidance and spirituality",
	"comparative":  "Comparative religion and interfaith",
	"nonreligious": "Non-religious and secular perspectives",
	"history":      "Historical and cultural context",
}

// defaultDialogueParticipants is used when an interfaith dialogue is
// requested without naming participants.
var defaultDialogueParticipants = []string{
	"christianity", "islam", "hinduism", "buddhism", "judaism",
}

// practiceLevels are the accepted experience levels for practice guides.
var practiceLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// ReligionNames returns the known religion identifiers, sorted.
func ReligionNames() []string {
	return sortedKeys(Religions)
}

// PhilosophyNames returns the known philosophy identifiers, sorted.
func PhilosophyNames() []string {
	return sortedKeys(Philosophies)
}

func sortedKeys(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
