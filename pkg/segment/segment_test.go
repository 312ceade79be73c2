package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		want []string
	}{
		{
			name: "english with abbreviation",
			text: "Hello there! How are you doing? I'm fine, thanks. Dr. Smith said it's okay.",
			lang: "en",
			want: []string{"Hello there!", "How are you doing?", "I'm fine, thanks.", "Dr. Smith said it's okay."},
		},
		{
			name: "initials do not end a sentence",
			text: "J. K. Rowling wrote it. Next one.",
			lang: "en",
			want: []string{"J. K. Rowling wrote it.", "Next one."},
		},
		{
			name: "lowercase continuation",
			text: "Wait... what? Yes.",
			lang: "en",
			want: []string{"Wait... what?", "Yes."},
		},
		{
			name: "newlines collapse",
			text: "Line one.\n\nLine   two.\n",
			lang: "en",
			want: []string{"Line one.", "Line two."},
		},
		{
			name: "trailing text without ending",
			text: "First. And then",
			lang: "en",
			want: []string{"First.", "And then"},
		},
		{
			name: "chinese",
			text: "你好！今天天气真好。我们去散步吧？",
			lang: "zh",
			want: []string{"你好！", "今天天气真好。", "我们去散步吧？"},
		},
		{
			name: "japanese keeps the tail",
			text: "おはよう。元気です",
			lang: "ja",
			want: []string{"おはよう。", "元気です"},
		},
		{
			name: "unknown language uses every ending",
			text: "Ciao. Come stai? 你好。",
			lang: "it",
			want: []string{"Ciao.", "Come stai?", "你好。"},
		},
		{
			name: "blank",
			text: "  \n\t ",
			lang: "en",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text, tt.lang))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		lang string
		want []string
	}{
		{"Don't stop, Mr. Smith!", "en", []string{"don't", "stop", "mr", "smith"}},
		{"¿Qué tal, Señor?", "es", []string{"qué", "tal", "señor"}},
		{"你好，世界！", "zh", []string{"你", "好", "世", "界"}},
		{"...", "en", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text, tt.lang))
		})
	}
}

func TestPerCharacter(t *testing.T) {
	assert.True(t, PerCharacter("zh"))
	assert.True(t, PerCharacter("ko"))
	assert.False(t, PerCharacter("en"))
	assert.False(t, PerCharacter(""))
}
