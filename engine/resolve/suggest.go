package resolve

import (
	"slices"
	"strings"
	"sync"

	"github.com/f1monkey/spellchecker"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz_"

// maxDictionaries bounds the cache; a game has few distinct vocabularies
// (one skill list per class, one target list per encounter side).
const maxDictionaries = 64

// dictionaries holds one spellchecker per vocabulary. Battles in a
// simulation resolve concurrently, so access is locked.
var dictionaries = struct {
	sync.Mutex
	byVocab map[string]*spellchecker.Spellchecker
}{byVocab: map[string]*spellchecker.Spellchecker{}}

// suggest returns the vocabulary word one edit away from word, or "".
// Only latin ids take part; Hangul names fall outside the alphabet.
func suggest(word string, vocabulary []string) string {
	if !latin(word) {
		return ""
	}
	var known []string
	for _, v := range vocabulary {
		if v = normalize(v); latin(v) {
			known = append(known, v)
		}
	}
	if len(known) == 0 {
		return ""
	}
	slices.Sort(known)
	known = slices.Compact(known)

	dictionaries.Lock()
	defer dictionaries.Unlock()
	sc, err := dictionary(known)
	if err != nil {
		return ""
	}
	out, err := sc.Suggest(word, 1)
	if err != nil || len(out) == 0 || out[0] == word {
		return ""
	}
	return out[0]
}

// dictionary returns the cached checker for the sorted words, building it on
// first use. The caller holds the lock.
func dictionary(words []string) (*spellchecker.Spellchecker, error) {
	key := strings.Join(words, " ")
	if sc, ok := dictionaries.byVocab[key]; ok {
		return sc, nil
	}
	sc, err := spellchecker.New(alphabet, spellchecker.WithMaxErrors(1))
	if err != nil {
		return nil, err
	}
	sc.Add(words...)
	if len(dictionaries.byVocab) >= maxDictionaries {
		clear(dictionaries.byVocab)
	}
	dictionaries.byVocab[key] = sc
	return sc, nil
}

func latin(s string) bool {
	return s != "" && strings.Trim(s, alphabet) == ""
}
