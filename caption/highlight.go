// Package caption synchronizes bilingual captions with clip-relative playback
// time and locates the lesson's highlight phrase inside caption text.
package caption

import (
	"sort"
	"strings"
	"unicode"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/mo"
)

// Span is a byte range inside the original caption text.
type Span struct {
	Start int
	End   int
}

// Match is the result of a successful highlight lookup.
type Match struct {
	Span     Span
	Strategy string
}

// Matcher is a single pure highlight-location strategy. Caption and phrase
// text frequently disagree on case, accents, and punctuation, so strategies
// are tried in order from strictest to loosest; the first match wins.
type Matcher struct {
	Name string
	Find func(text, phrase string) (Span, bool)
}

// Matchers is the ordered highlight cascade.
var Matchers = []Matcher{
	{"exact", exactFind},
	{"accent-normalized", accentFind},
	{"punctuation-stripped", punctFind},
	{"substring", substringFind},
	{"fuzzy-character", fuzzyFind},
}

// FindHighlight locates the phrase inside the caption text using the matcher
// cascade. When no strategy matches, the caption is rendered unhighlighted.
func FindHighlight(text, phrase string) mo.Option[Match] {
	if text == "" || phrase == "" {
		return mo.None[Match]()
	}

	for _, m := range Matchers {
		if span, ok := m.Find(text, phrase); ok {
			return mo.Some(Match{Span: span, Strategy: m.Name})
		}
	}
	return mo.None[Match]()
}

// IsHighlighted reports whether the caption contains the phrase under a
// case- and diacritic-insensitive substring test.
func IsHighlighted(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	folded := foldRunes([]rune(text))
	_, ok := runeIndex(folded, foldRunes([]rune(phrase)))
	return ok
}

func exactFind(text, phrase string) (Span, bool) {
	idx := strings.Index(text, phrase)
	if idx < 0 {
		return Span{}, false
	}
	return Span{Start: idx, End: idx + len(phrase)}, true
}

func accentFind(text, phrase string) (Span, bool) {
	runes := []rune(text)
	idx, ok := runeIndex(foldRunes(runes), foldRunes([]rune(phrase)))
	if !ok {
		return Span{}, false
	}
	return runeSpan(runes, idx, idx+len([]rune(phrase))), true
}

func punctFind(text, phrase string) (Span, bool) {
	textRunes, textMap := stripPunct([]rune(text))
	phraseRunes, _ := stripPunct([]rune(phrase))
	if len(phraseRunes) == 0 {
		return Span{}, false
	}

	idx, ok := runeIndex(foldRunes(textRunes), foldRunes(phraseRunes))
	if !ok {
		return Span{}, false
	}

	orig := []rune(text)
	start := textMap[idx]
	end := textMap[idx+len(phraseRunes)-1] + 1
	return runeSpan(orig, start, end), true
}

// substringFind falls back to locating a single word of the phrase, longest
// first. Short words are skipped to avoid highlighting articles.
func substringFind(text, phrase string) (Span, bool) {
	words := strings.Fields(phrase)
	sort.SliceStable(words, func(i, j int) bool {
		return len([]rune(words[i])) > len([]rune(words[j]))
	})

	for _, word := range words {
		if len([]rune(word)) < 4 {
			continue
		}
		if span, ok := punctFind(text, word); ok {
			return span, true
		}
	}
	return Span{}, false
}

// fuzzyFind slides a phrase-sized window over the caption and accepts the
// closest window within an edit-distance budget of one character per four.
func fuzzyFind(text, phrase string) (Span, bool) {
	textRunes := foldRunes([]rune(text))
	phraseRunes := foldRunes([]rune(phrase))
	window := len(phraseRunes)
	if window == 0 || len(textRunes) < window {
		return Span{}, false
	}

	budget := window / 4
	if budget == 0 {
		budget = 1
	}

	bestIdx, bestDist := -1, budget+1
	for i := 0; i+window <= len(textRunes); i++ {
		dist := levenshtein.Distance(string(textRunes[i:i+window]), string(phraseRunes))
		if dist < bestDist {
			bestIdx, bestDist = i, dist
		}
	}

	if bestIdx < 0 {
		return Span{}, false
	}
	return runeSpan([]rune(text), bestIdx, bestIdx+window), true
}

// FuzzyContains is a loose containment check used by search-style lookups.
func FuzzyContains(text, phrase string) bool {
	return fuzzy.MatchNormalizedFold(phrase, text)
}

// foldRunes lowercases and strips combining diacritics, preserving a 1:1
// rune correspondence with the input so spans can be mapped back.
func foldRunes(runes []rune) []rune {
	folded := make([]rune, len(runes))
	for i, r := range runes {
		folded[i] = foldRune(r)
	}
	return folded
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c', 'ß': 's', 'ý': 'y',
}

func foldRune(r rune) rune {
	r = unicode.ToLower(r)
	if folded, ok := accentFold[r]; ok {
		return folded
	}
	return r
}

// runeIndex finds needle inside haystack, both in rune space.
func runeIndex(haystack, needle []rune) (int, bool) {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return 0, false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i, true
		}
	}
	return 0, false
}

// runeSpan converts a rune range of the original text into a byte Span.
func runeSpan(runes []rune, start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	return Span{
		Start: len(string(runes[:start])),
		End:   len(string(runes[:end])),
	}
}

// stripPunct removes punctuation and collapses the rune slice, returning a
// map from stripped index back to the original rune index.
func stripPunct(runes []rune) ([]rune, []int) {
	out := make([]rune, 0, len(runes))
	idx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) {
			continue
		}
		out = append(out, r)
		idx = append(idx, i)
	}
	return out, idx
}
