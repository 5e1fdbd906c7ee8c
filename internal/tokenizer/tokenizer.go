// Package tokenizer turns article prose into lowercased, stemmed English
// tokens. Punctuation is stripped, separator characters become spaces,
// all-digit tokens are dropped, and stemming uses the snowball English
// stemmer. Stopword filtering is a separate step because some callers (the
// article-type text heuristic) need the stopwords kept.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

const minWordLength = 3

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"www", "http", "com", "the", "be", "to", "of", "and", "a", "in",
		"that", "have", "i", "it", "for", "not", "on", "with", "he", "as",
		"you", "do", "at", "this", "but", "his", "by", "from", "they",
		"we", "say", "her", "she", "or", "an", "will", "my", "one", "all",
		"would", "there", "their", "what", "so", "up", "out", "if", "about",
		"who", "get", "go", "which", "me", "when", "make", "can", "like",
		"time", "no", "just", "him", "know", "take", "into", "year", "your",
		"good", "some", "could", "them", "see", "other", "than", "then",
		"now", "only", "come", "its", "over", "also", "back", "after",
		"use", "two", "how", "our", "work", "first", "well", "way", "even",
		"new", "want", "any", "these", "day", "most", "us", "because", "is",
		"was", "are", "has", "were", "more", "been", "very", "where", "did",
		"should", "may", "non",
	} {
		stopWords[w] = struct{}{}
	}
}

// Tokenize splits text into cleaned tokens, optionally stemmed. Token
// order follows the text; stopwords are retained.
func Tokenize(text string, stem bool) []string {
	text = removePunctuation(text)

	tokens := make([]string, 0, len(text)/6)
	for _, word := range strings.Fields(text) {
		word = cleanWord(word)
		if word == "" || allDigits(word) {
			continue
		}
		if stem {
			word = english.Stem(word, true)
			if word == "" {
				continue
			}
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// FilterStopWords removes stopwords and tokens shorter than three
// characters from a tokenized list.
func FilterStopWords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < minWordLength {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

var punctReplacer = strings.NewReplacer(
	"'", "", "`", "", ";", "", ",", "", "?", "", "!", "",
	"_", " ", "@", " ", "-", " ", "\t", " ", "/", " ", "\\", " ",
	".", " ",
)

func removePunctuation(text string) string {
	return punctReplacer.Replace(text)
}

// cleanWord keeps only letters and digits and lowercases the result.
func cleanWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.TrimSpace(b.String())
}

func allDigits(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}
