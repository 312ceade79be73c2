// Package segment splits lesson text into sentences and sentences into the
// tokens used for alignment.
package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var sentenceEndings = map[string]*regexp.Regexp{
	"en": regexp.MustCompile(`[.!?]+`),
	"zh": regexp.MustCompile(`[。！？]+`),
	"ja": regexp.MustCompile(`[。！？]+`),
	"ko": regexp.MustCompile(`[。！？.!?]+`),
	"es": regexp.MustCompile(`[.!?¡¿]+`),
	"fr": regexp.MustCompile(`[.!?]+`),
	"de": regexp.MustCompile(`[.!?]+`),
}

var defaultEnding = regexp.MustCompile(`[.!?。！？]+`)

// words that end with a period without ending the sentence
var abbreviations = map[string]map[string]bool{
	"en": {
		"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
		"vs": true, "etc": true, "e.g": true, "i.e": true, "no": true, "vol": true,
	},
}

var (
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_\s']`)
	nonCJKChars  = regexp.MustCompile(`[^\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}\s]`)
)

// PerCharacter reports whether lang is tokenized one character at a time
func PerCharacter(lang string) bool {
	switch lang {
	case "zh", "ja", "ko":
		return true
	}
	return false
}

type part struct {
	text  string
	delim bool
}

// Split cuts text into sentences. Newlines and runs of whitespace collapse to
// a single space. Chinese and Japanese split on every sentence ending; other
// languages keep known abbreviations, single letters and endings followed by
// a lowercase word inside the sentence.
func Split(text, lang string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	ending, ok := sentenceEndings[lang]
	if !ok {
		ending = defaultEnding
	}
	parts := splitKeep(text, ending)

	if lang == "zh" || lang == "ja" {
		return splitCJK(parts)
	}
	return splitWestern(parts, abbreviations[lang])
}

// splitKeep splits text around every match of re, keeping the matches
func splitKeep(text string, re *regexp.Regexp) []part {
	var parts []part
	prev := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			parts = append(parts, part{text: text[prev:loc[0]]})
		}
		parts = append(parts, part{text: text[loc[0]:loc[1]], delim: true})
		prev = loc[1]
	}
	if prev < len(text) {
		parts = append(parts, part{text: text[prev:]})
	}
	return parts
}

func splitCJK(parts []part) []string {
	var sentences []string
	var current strings.Builder
	for _, p := range parts {
		current.WriteString(p.text)
		if p.delim {
			sentences = appendSentence(sentences, current.String())
			current.Reset()
		}
	}
	return appendSentence(sentences, current.String())
}

func splitWestern(parts []part, abbrevs map[string]bool) []string {
	var sentences []string
	current := ""
	for i, p := range parts {
		current += p.text
		if !p.delim {
			continue
		}

		if endsWithAbbreviation(current, abbrevs) {
			continue
		}
		if i+1 < len(parts) && startsLower(parts[i+1].text) {
			continue
		}
		if strings.TrimSpace(current) != "" {
			sentences = append(sentences, strings.TrimSpace(current))
			current = ""
		}
	}
	return appendSentence(sentences, current)
}

func endsWithAbbreviation(current string, abbrevs map[string]bool) bool {
	words := strings.Fields(strings.ToLower(current))
	if len(words) == 0 {
		return false
	}
	last := strings.TrimRight(words[len(words)-1], ".!?")
	if abbrevs[last] {
		return true
	}
	r, size := utf8.DecodeRuneInString(last)
	return size == len(last) && unicode.IsLetter(r)
}

func startsLower(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	return unicode.IsLower(r)
}

func appendSentence(sentences []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(sentences, s)
	}
	return sentences
}

// Tokenize lowercases text and returns its words with punctuation removed.
// Apostrophes stay inside words. Per-character languages return one token
// per character.
func Tokenize(text, lang string) []string {
	text = strings.ToLower(text)

	if PerCharacter(lang) {
		text = nonCJKChars.ReplaceAllString(text, " ")
		var tokens []string
		for _, r := range text {
			if !unicode.IsSpace(r) {
				tokens = append(tokens, string(r))
			}
		}
		return tokens
	}

	return strings.Fields(nonWordChars.ReplaceAllString(text, " "))
}
