// Package persona is the offline friend used for guest sessions. It maps an utterance to
// a reply using keyword rules and falls back to a fixed pool of empathetic replies.
package persona

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/comigor/friendbot-go/internal/session"
)

// Rule maps a keyword cluster to a reply template. %s in the template is replaced by the
// persona name.
type Rule struct {
	Name     string
	Keywords []string
	Reply    string
}

// Rules are checked in this order and the first match wins: sad, happy, anxious, greeting.
// "hi, I feel sad" therefore gets the sadness reply.
var Rules = []Rule{
	{
		Name:     "sad",
		Keywords: []string{"sad", "unhappy", "depressed", "down", "lonely", "upset", "cry", "crying", "miserable", "heartbroken"},
		Reply:    "I'm really sorry you're feeling this way. I'm %s, and I'm here for you. Do you want to tell me what's been weighing on you?",
	},
	{
		Name:     "happy",
		Keywords: []string{"happy", "glad", "excited", "great", "awesome", "amazing", "wonderful", "fantastic", "joy"},
		Reply:    "That's wonderful to hear! %s here, and I love good news. What made things go so well?",
	},
	{
		Name:     "anxious",
		Keywords: []string{"anxious", "anxiety", "worried", "worry", "nervous", "stress", "stressed", "scared", "afraid", "panic"},
		Reply:    "That sounds stressful. Let's take a slow breath together. I'm %s, and we can work through it one step at a time. What's on your mind most?",
	},
	{
		Name:     "greeting",
		Keywords: []string{"hi", "hello", "hey", "hiya", "howdy", "greetings", "yo"},
		Reply:    "Hey there! It's %s. How are you doing today?",
	},
}

// Fallbacks is the pool used when no rule matches.
var Fallbacks = []string{
	"I hear you. Tell me more about that.",
	"That's interesting. How does it make you feel?",
	"Thanks for sharing that with me. What happened next?",
	"I'm listening. Take your time.",
	"I appreciate you opening up. What would help you most right now?",
}

// Welcome is the first message of a guest session.
const Welcome = "Hi there! I'm your AI friend. How can I help you today?"

// Name returns the persona name used for a preference.
func Name(p session.Preference) string {
	switch p {
	case session.PreferenceMale:
		return "Alex"
	case session.PreferenceFemale:
		return "Emma"
	default:
		return "Jordan"
	}
}

// Responder produces offline replies. The zero value is not usable; use New.
type Responder struct {
	intn func(n int) int
}

// New returns a Responder drawing fallbacks from intn. A nil intn uses math/rand/v2.
func New(intn func(n int) int) *Responder {
	if intn == nil {
		intn = rand.IntN
	}
	return &Responder{intn: intn}
}

// Respond returns the reply for utterance spoken to the persona selected by p. It never
// returns an empty string.
func (r *Responder) Respond(p session.Preference, utterance string) string {
	if rule, ok := Match(utterance); ok {
		return fmt.Sprintf(rule.Reply, Name(p))
	}
	return Fallbacks[r.intn(len(Fallbacks))]
}

// Match returns the first rule whose keywords appear as words in utterance.
func Match(utterance string) (Rule, bool) {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(utterance), notWordRune) {
		words[w] = struct{}{}
	}
	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if _, ok := words[kw]; ok {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && r != '\''
}
