package nlp

import "strings"

// Keyword tables. Matching is by substring against the lower-cased text.

var priorityKeywords = []keywordGroup[Priority]{
	{PriorityHigh, []string{"urgent", "asap", "critical", "important", "high priority", "!!!", "emergency"}},
	{PriorityMedium, []string{"medium", "normal", "standard"}},
	{PriorityLow, []string{"low", "minor", "when possible", "eventually", "someday"}},
}

var typeKeywords = []keywordGroup[TaskType]{
	{TypeBrain, []string{
		"code", "design", "plan", "think", "analyze", "research", "write", "create", "brainstorm",
		"focus", "deep work", "strategy", "learn", "study", "review", "architect", "solve", "optimize",
	}},
	{TypeAdmin, []string{
		"email", "meeting", "call", "admin", "paperwork", "file", "organize", "schedule", "book", "pay",
		"buy", "order", "respond", "reply", "check", "update", "sync", "backup", "clean", "sort",
	}},
}

var energyKeywords = []keywordGroup[Energy]{
	{EnergyLow, []string{"simple", "easy", "quick", "routine", "basic", "light"}},
	{EnergyMedium, []string{"normal", "regular", "standard", "moderate"}},
	{EnergyHigh, []string{"complex", "challenging", "intensive", "creative", "difficult", "deep"}},
}

var focusKeywords = []keywordGroup[Focus]{
	{FocusShallow, []string{"quick", "simple", "call", "email", "message", "check", "update"}},
	{FocusDeep, []string{"focus", "deep", "think", "analyze", "design", "code", "write", "create", "plan"}},
}

// extractPriority checks exclamation marks first: three or more is high and
// exactly two is medium, both without consulting the keyword lists.
func extractPriority(text string) (Priority, bool) {
	switch bangs := strings.Count(text, "!"); {
	case bangs >= 3:
		return PriorityHigh, true
	case bangs == 2:
		return PriorityMedium, true
	}

	for _, g := range priorityKeywords {
		for _, w := range g.words {
			if strings.Contains(text, w) {
				return g.key, true
			}
		}
	}
	return "", false
}

// extractType returns the category with strictly more keyword hits.
func extractType(text string) (TaskType, bool) {
	counts := countKeywords(typeKeywords, text)
	brain, admin := counts[TypeBrain], counts[TypeAdmin]
	switch {
	case brain > admin:
		return TypeBrain, true
	case admin > brain:
		return TypeAdmin, true
	}
	return "", false
}

// extractEnergy prefers high, then low, when either strictly dominates; any
// remaining signal falls back to medium.
func extractEnergy(text string) (Energy, bool) {
	counts := countKeywords(energyKeywords, text)
	low, medium, high := counts[EnergyLow], counts[EnergyMedium], counts[EnergyHigh]
	switch {
	case high > low && high > medium:
		return EnergyHigh, true
	case low > high && low > medium:
		return EnergyLow, true
	case medium > 0:
		return EnergyMedium, true
	}
	return "", false
}

func extractFocus(text string) (Focus, bool) {
	counts := countKeywords(focusKeywords, text)
	shallow, deep := counts[FocusShallow], counts[FocusDeep]
	switch {
	case deep > shallow:
		return FocusDeep, true
	case shallow > deep:
		return FocusShallow, true
	}
	return "", false
}
