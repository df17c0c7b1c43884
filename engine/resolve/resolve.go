// Package resolve maps skill and combatant names from parsed intents to IDs.
package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/bravecore/types"
)

// Candidate is a combatant that a name may refer to.
type Candidate struct {
	ID   string
	Name string
}

// Result holds the resolved IDs for an intent.
type Result struct {
	SkillID  string
	TargetID string
}

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Kind       string // "skill" or "target"
	Name       string
	Suggestion string // closest known id, if any
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("there is no %q here", e.Name)
	if e.Kind == "skill" {
		msg = fmt.Sprintf("you don't know %q", e.Name)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

// Resolve maps an intent's object to one of skills and its target to one of
// the candidates that targets returns for that skill. Words after the
// skill name in the object are treated as the start of the target, so
// "slash goblin" works without a preposition.
func Resolve(skills []types.SkillDef, targets func(types.SkillDef) []Candidate, intent types.Intent) (Result, error) {
	var res Result
	if intent.Object == "" {
		return res, &NotFoundError{Kind: "skill", Name: intent.Verb}
	}

	sk, rest, err := Skill(skills, intent.Object)
	if err != nil {
		return res, err
	}
	res.SkillID = sk.ID

	name := strings.TrimSpace(rest + " " + intent.Target)
	if name == "" || targets == nil {
		return res, nil
	}
	res.TargetID, err = Target(targets(sk), name)
	return res, err
}

// Skill finds the skill named by the longest leading run of words in
// phrase and returns the leftover words.
func Skill(skills []types.SkillDef, phrase string) (types.SkillDef, string, error) {
	words := strings.Fields(normalize(phrase))
	for n := len(words); n > 0; n-- {
		query := strings.Join(words[:n], " ")
		var matches []types.SkillDef
		for _, sk := range skills {
			if exact(sk.ID, sk.Name, query) {
				matches = append(matches, sk)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], strings.Join(words[n:], " "), nil
		default:
			return types.SkillDef{}, "", &AmbiguityError{Name: query, Candidates: skillIDs(matches)}
		}
	}

	// Fall back to a single word of a longer skill name ("ball" for "fire ball").
	if len(words) > 0 {
		var matches []types.SkillDef
		for _, sk := range skills {
			if partial(sk.Name, words[0]) {
				matches = append(matches, sk)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], strings.Join(words[1:], " "), nil
		case 0:
		default:
			return types.SkillDef{}, "", &AmbiguityError{Name: words[0], Candidates: skillIDs(matches)}
		}
	}
	nf := &NotFoundError{Kind: "skill", Name: phrase}
	if len(words) > 0 {
		nf.Suggestion = suggest(words[0], skillIDs(skills))
	}
	return types.SkillDef{}, "", nf
}

// Target resolves a single name among candidates.
func Target(candidates []Candidate, name string) (string, error) {
	query := normalize(name)

	// Exact ID or name wins over partial matches.
	var matches []string
	for _, c := range candidates {
		if exact(c.ID, c.Name, query) {
			matches = append(matches, c.ID)
		}
	}
	if len(matches) == 0 {
		for _, c := range candidates {
			if partial(c.Name, query) {
				matches = append(matches, c.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		return "", &NotFoundError{Kind: "target", Name: name, Suggestion: suggest(query, ids)}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// exact reports an ID or full-name match. "fire ball" also matches the ID
// "fire_ball".
func exact(id, name, query string) bool {
	idLower := normalize(id)
	if idLower == query || strings.ReplaceAll(query, " ", "_") == idLower {
		return true
	}
	return normalize(name) == query
}

// partial reports whether query is one word of name, so "goblin" matches
// "Goblin 2" and "볼" matches "파이어 볼".
func partial(name, query string) bool {
	for _, word := range strings.Fields(normalize(name)) {
		if word == query {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

func skillIDs(skills []types.SkillDef) []string {
	ids := make([]string, len(skills))
	for i, sk := range skills {
		ids[i] = sk.ID
	}
	return ids
}
