package sentiment

import (
	"strings"

	"github.com/jwlee-dev/encoreview/internal/model"
)

// LabelPriority is the order in which label substrings are checked against
// the model's free-text answer.  An answer containing several label words
// resolves to the first match here, not to the most confident one; the
// order is deliberate and explicit rather than buried in control flow.
var LabelPriority = []string{
	model.EmotionPositive,
	model.EmotionNeutral,
	model.EmotionNegative,
}

// MapLabel resolves a free-text model answer to one of the three labels by
// substring containment in LabelPriority order.  It returns "" when the
// answer contains none of the label words, which callers treat as
// inconclusive.
func MapLabel(response string) string {
	for _, label := range LabelPriority {
		if strings.Contains(response, label) {
			return label
		}
	}
	return ""
}
