package nlp

import "math"

const baseConfidence = 0.3

// score derives confidence from which fields are populated and how many
// suggestions were produced.
func score(t *ParsedTask) float64 {
	c := baseConfidence
	add := func(cond bool, w float64) {
		if cond {
			c += w
		}
	}

	add(t.DueDate != nil, 0.12)
	add(t.DueTime != nil, 0.12)
	add(t.Recurrence != nil, 0.08)
	add(t.Priority != PriorityMedium, 0.08)
	add(t.Type != TypeBrain, 0.08)
	add(len(t.Tags) > 0, 0.08)
	add(len(t.ContextTags) > 0, 0.08)
	add(t.TimeBlock != nil, 0.08)
	add(t.Energy != nil && *t.Energy != EnergyMedium, 0.05)
	add(t.Focus != nil && *t.Focus != FocusShallow, 0.05)

	n := len(t.Suggestions)
	add(n >= 3, 0.08)
	add(n >= 5, 0.08)
	add(n >= 7, 0.04)

	// Round away float noise from the sums above.
	c = math.Round(c*100) / 100
	return math.Min(c, 1.0)
}
