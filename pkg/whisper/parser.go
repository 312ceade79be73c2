package whisper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Word is one recognised word with its own timing. Probability is the
// lowest probability among the tokens that make up the word.
type Word struct {
	Text        string  `json:"word"`
	StartMs     int     `json:"startMs"`
	EndMs       int     `json:"endMs"`
	Probability float64 `json:"probability"`
}

// Segment is one timed span of recognised speech
type Segment struct {
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
	Text    string `json:"text"`
	Words   []Word `json:"words,omitempty"`
}

// Transcript is a parsed whisper output
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// DurationMs is the end of the last segment
func (t *Transcript) DurationMs() int {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].EndMs
}

// Words returns the word timings of every segment in order
func (t *Transcript) Words() []Word {
	var words []Word
	for _, s := range t.Segments {
		words = append(words, s.Words...)
	}
	return words
}

type cppOffsets struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// token entry of whisper.cpp -ojf output
type cppToken struct {
	Text        string      `json:"text"`
	Offsets     *cppOffsets `json:"offsets"`
	Probability float64     `json:"p"`
}

// whisper.cpp -oj / -ojf output
type cppOutput struct {
	Params struct {
		Language string `json:"language"`
	} `json:"params"`
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Timestamps struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"timestamps"`
		Offsets *cppOffsets `json:"offsets"`
		Text    string      `json:"text"`
		Tokens  []cppToken  `json:"tokens"`
	} `json:"transcription"`
}

// ParseJSON parses the JSON file written by whisper-cli -oj. Output written
// with -ojf also carries tokens, which are grouped into word timings.
func ParseJSON(data []byte) (*Transcript, error) {
	var out cppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	transcript := &Transcript{
		Language: out.Result.Language,
		Segments: make([]Segment, 0, len(out.Transcription)),
	}
	if transcript.Language == "" {
		transcript.Language = out.Params.Language
	}

	for _, t := range out.Transcription {
		seg := Segment{Text: strings.TrimSpace(t.Text)}
		if t.Offsets != nil {
			seg.StartMs, seg.EndMs = t.Offsets.From, t.Offsets.To
		} else {
			var err error
			if seg.StartMs, err = parseTimestamp(t.Timestamps.From); err != nil {
				return nil, err
			}
			if seg.EndMs, err = parseTimestamp(t.Timestamps.To); err != nil {
				return nil, err
			}
		}
		if seg.Text == "" {
			continue
		}
		seg.Words = groupTokens(t.Tokens, charLanguages[transcript.Language])
		transcript.Segments = append(transcript.Segments, seg)
	}

	transcript.Text = joinText(transcript.Segments)
	return transcript, nil
}

// languages written without spaces, where every token is a word
var charLanguages = map[string]bool{"zh": true, "ja": true, "ko": true}

// groupTokens joins sub-word tokens into words. A token opens a new word when
// it starts with a space, or always when perToken is set. Special tokens such
// as [_BEG_] and <|endoftext|> are skipped.
func groupTokens(tokens []cppToken, perToken bool) []Word {
	var words []Word
	for _, tok := range tokens {
		if tok.Offsets == nil || strings.HasPrefix(tok.Text, "[_") || strings.HasPrefix(tok.Text, "<|") {
			continue
		}
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}

		if len(words) == 0 || perToken || strings.HasPrefix(tok.Text, " ") {
			words = append(words, Word{
				Text:        text,
				StartMs:     tok.Offsets.From,
				EndMs:       tok.Offsets.To,
				Probability: tok.Probability,
			})
			continue
		}
		last := &words[len(words)-1]
		last.Text += text
		last.EndMs = tok.Offsets.To
		last.Probability = min(last.Probability, tok.Probability)
	}
	return words
}

var (
	cueTimingRegex = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}[.,]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[.,]\d{3})`)
	voiceTagRegex  = regexp.MustCompile(`</?[vibu][^>]*>`)
)

// ParseVTT parses WebVTT (-ovtt) or SRT (-osrt) output. Cue numbers and
// headers are skipped and multi-line cues are joined with a space.
func ParseVTT(content string) (*Transcript, error) {
	transcript := &Transcript{Segments: []Segment{}}

	var current *Segment
	var text strings.Builder

	flush := func() {
		if current != nil && text.Len() > 0 {
			current.Text = strings.TrimSpace(text.String())
			transcript.Segments = append(transcript.Segments, *current)
		}
		current = nil
		text.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}

		if m := cueTimingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, err := parseTimestamp(m[1])
			if err != nil {
				return nil, err
			}
			end, err := parseTimestamp(m[2])
			if err != nil {
				return nil, err
			}
			current = &Segment{StartMs: start, EndMs: end}
			continue
		}

		if current == nil {
			// cue identifier or SRT sequence number
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(strings.TrimSpace(voiceTagRegex.ReplaceAllString(line, "")))
	}
	flush()

	transcript.Text = joinText(transcript.Segments)
	return transcript, nil
}

// parseTimestamp parses HH:MM:SS.mmm or HH:MM:SS,mmm into milliseconds
func parseTimestamp(ts string) (int, error) {
	parts := strings.Split(strings.Replace(ts, ",", ".", 1), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}

	secParts := strings.SplitN(parts[2], ".", 2)
	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}
	millis := 0
	if len(secParts) == 2 {
		if millis, err = strconv.Atoi(secParts[1]); err != nil {
			return 0, fmt.Errorf("invalid timestamp: %q", ts)
		}
	}

	return ((hours*60+minutes)*60+seconds)*1000 + millis, nil
}

func joinText(segments []Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}
