package emotion

import "strings"

// Label is the coarse emotion attached to a chat message
type Label string

const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Angry   Label = "angry"
	Neutral Label = "neutral"
)

// Classifier turns free text into an emotion label
type Classifier interface {
	Classify(text string) Label
}

var positiveWords = []string{
	"happy", "joy", "excited", "great", "wonderful", "love", "amazing", "good", "awesome",
}

var negativeWords = []string{
	"sad", "angry", "hate", "terrible", "awful", "bad", "upset", "mad", "frustrated",
}

// hostile words turn a negative text into Angry instead of Sad
var hostileWords = []string{"angry", "mad", "frustrated"}

// Keyword is the keyword-count Classifier. Matching is substring based, so
// "badge" counts as "bad" and "made" counts as "mad"
type Keyword struct{}

// NewKeyword returns the keyword classifier
func NewKeyword() Keyword {
	return Keyword{}
}

// Classify implements Classifier
func (Keyword) Classify(text string) Label {
	return Classify(text)
}

// Classify labels text by counting positive and negative keywords. Each
// keyword contributes at most once. Ties, including no matches at all, are
// Neutral
func Classify(text string) Label {
	normalized := strings.ToLower(text)

	positive := countMatches(normalized, positiveWords)
	negative := countMatches(normalized, negativeWords)

	switch {
	case positive > negative:
		return Happy
	case negative > positive:
		if countMatches(normalized, hostileWords) > 0 {
			return Angry
		}
		return Sad
	default:
		return Neutral
	}
}

func countMatches(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}
