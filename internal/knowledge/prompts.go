package knowledge

import (
	"fmt"
	"strings"
)

// titleCase uppercases the first rune, matching how tradition names are
// rendered inside prompts.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

func informationPrompt(religion, category, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide accurate, respectful, and educational information about %s ", titleCase(religion))

	if desc, ok := Categories[category]; ok {
		fmt.Fprintf(&b, "focusing on %s. ", desc)
	} else {
		b.WriteString("covering its core beliefs, practices, and principles. ")
	}
	if query != "" {
		fmt.Fprintf(&b, "Specifically address this question: %s", query)
	}

	b.WriteString("\n\nPlease structure your response with these sections when applicable:\n")
	b.WriteString("1. Core Beliefs\n2. Key Practices\n3. Sacred Texts\n4. Historical Context\n5. Modern Interpretation")
	return b.String()
}

func perspectivePrompt(philosophy, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide an educational explanation of %s philosophy ", philosophy)

	if topic != "" {
		fmt.Fprintf(&b, "specifically addressing: %s. ", topic)
	} else {
		b.WriteString("covering its key principles, notable thinkers, and practical applications. ")
	}

	b.WriteString("\n\nPlease structure your response with these sections:\n")
	b.WriteString("1. Core Principles\n2. Key Thinkers\n3. Historical Context\n4. Modern Relevance\n5. Practical Applications")
	return b.String()
}

func comparisonPrompt(religion1, religion2, aspect string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a respectful, educational, and balanced comparison between %s and %s ",
		titleCase(religion1), titleCase(religion2))

	if aspect != "" && aspect != "general" {
		fmt.Fprintf(&b, "focusing specifically on their %s. ", aspect)
	} else {
		b.WriteString("covering their core beliefs, practices, and historical contexts. ")
	}

	b.WriteString("\n\nPlease structure your response with these sections:\n")
	fmt.Fprintf(&b, "1. %s Overview\n2. %s Overview\n", titleCase(religion1), titleCase(religion2))
	b.WriteString("3. Key Similarities\n4. Notable Differences\n5. Historical Interactions\n6. Modern Coexistence")
	return b.String()
}

func dailyInsightPrompt(tradition, theme string) string {
	var b strings.Builder
	b.WriteString("Provide an inspiring and thought-provoking spiritual insight for today ")

	if tradition != "" {
		if _, ok := Religions[tradition]; ok {
			fmt.Fprintf(&b, "from the %s tradition ", titleCase(tradition))
		} else if _, ok := Philosophies[tradition]; ok {
			fmt.Fprintf(&b, "from %s philosophy ", titleCase(tradition))
		}
	}
	if theme != "" {
		fmt.Fprintf(&b, "focusing on the theme of %s. ", theme)
	} else {
		b.WriteString("that encourages reflection and personal growth. ")
	}

	b.WriteString("\n\nPlease include:\n")
	b.WriteString("1. A meaningful quote or saying\n2. The source or attribution\n3. A brief reflection (2-3 sentences)\n4. A simple practice or contemplation for the day")
	return b.String()
}

func meditationPrompt(tradition string, duration int, focus string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-minute guided meditation script ", duration)

	if tradition != "" {
		if _, ok := Religions[tradition]; ok {
			fmt.Fprintf(&b, "based on %s practices ", titleCase(tradition))
		} else if _, ok := Philosophies[tradition]; ok {
			fmt.Fprintf(&b, "inspired by %s philosophy ", titleCase(tradition))
		}
	}
	fmt.Fprintf(&b, "focusing on %s. ", focus)

	b.WriteString("\n\nPlease structure the meditation guide with:\n")
	b.WriteString("1. A brief introduction explaining the benefits and context\n")
	b.WriteString("2. Preparation instructions\n")
	b.WriteString("3. Step-by-step meditation guidance with appropriate timing\n")
	b.WriteString("4. A gentle conclusion\n")
	b.WriteString("5. Suggestions for integrating the practice into daily life")
	return b.String()
}

func dialoguePrompt(topic string, participants []string) string {
	titled := make([]string, len(participants))
	for i, p := range participants {
		titled[i] = titleCase(p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create an educational interfaith dialogue on the topic of '%s' between representatives of ", topic)
	b.WriteString(strings.Join(titled[:len(titled)-1], ", "))
	fmt.Fprintf(&b, ", and %s. ", titled[len(titled)-1])

	b.WriteString("\n\nPlease structure the dialogue to:\n")
	b.WriteString("1. Respectfully represent each tradition's perspective\n")
	b.WriteString("2. Highlight areas of agreement and disagreement\n")
	b.WriteString("3. Demonstrate mutual respect and understanding\n")
	b.WriteString("4. Conclude with insights gained from the dialogue")
	return b.String()
}

func practicePrompt(practice, tradition, level string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s level guide for the spiritual practice of %s ", level, practice)

	if tradition != "" {
		fmt.Fprintf(&b, "in the %s tradition. ", titleCase(tradition))
	} else {
		b.WriteString("that is accessible to people of various spiritual backgrounds. ")
	}

	b.WriteString("\n\nPlease structure the guide with:\n")
	b.WriteString("1. Introduction and benefits\n")
	b.WriteString("2. Historical and spiritual context\n")
	b.WriteString("3. Step-by-step instructions\n")
	b.WriteString("4. Common challenges and solutions\n")
	b.WriteString("5. Tips for deepening the practice\n")
	b.WriteString("6. Resources for further learning")
	return b.String()
}
