// Package parser converts battle command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching. Skill and target names
// are resolved by the engine, which knows the roster.
package parser

import (
	"strings"

	"github.com/nathoo/bravecore/types"
)

// Verbs the engine understands. Anything else is read as a skill name.
var verbs = map[string]bool{
	"use":    true,
	"attack": true,
	"skills": true,
	"status": true,
	"look":   true,
	"wait":   true,
	"flee":   true,
	"again":  true,
	"help":   true,
}

var verbAliases = map[string]string{
	// Use
	"u":    "use",
	"cast": "use",
	"do":   "use",
	"사용":   "use",
	"시전":   "use",

	// Attack
	"a":   "attack",
	"hit": "attack",
	"공격":  "attack",

	// Skills
	"sk":    "skills",
	"skill": "skills",
	"list":  "skills",
	"스킬":    "skills",

	// Status
	"st":    "status",
	"stat":  "status",
	"stats": "status",
	"상태":    "status",

	// Look
	"l":  "look",
	"살펴": "look",
	"전장": "look",

	// Wait
	"z":    "wait",
	"pass": "wait",
	"대기":   "wait",

	// Flee
	"run":    "flee",
	"escape": "flee",
	"도망":     "flee",
	"도주":     "flee",

	// Again
	"g":      "again",
	"repeat": "again",
	"다시":     "again",

	// Help
	"h": "help",
	"?": "help",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"against": true, "onto": true, "->": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Korean dative endings ("고블린에게") mark the target.
var targetSuffixes = []string{"에게", "한테"}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Apply verb aliases. A bare "a" is attack, never an article.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	if !verbs[words[0]] {
		// "slash goblin" is shorthand for "use slash goblin".
		words = append([]string{"use"}, words...)
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Korean puts the verb last: "베기 사용".
	if n := len(rest); verb == "use" && n > 0 && verbAliases[rest[n-1]] == "use" {
		rest = rest[:n-1]
	}

	object, target := splitOnPreposition(rest)
	if target == "" {
		object, target = splitOnSuffix(object)
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}

// splitOnSuffix pulls the word marked with a dative ending out as the
// target: both "베기 고블린에게" and "고블린에게 베기" give "베기" and "고블린".
func splitOnSuffix(phrase string) (object, target string) {
	words := strings.Fields(phrase)
	for i, w := range words {
		for _, suf := range targetSuffixes {
			if stem, ok := strings.CutSuffix(w, suf); ok && stem != "" {
				rest := append(append([]string{}, words[:i]...), words[i+1:]...)
				return strings.Join(rest, " "), stem
			}
		}
	}
	return phrase, ""
}
