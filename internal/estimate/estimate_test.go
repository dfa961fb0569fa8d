package estimate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimator_Duration(t *testing.T) {
	e := Default()

	tests := []struct {
		name     string
		text     string
		expected time.Duration
	}{
		{"two words clamp to min", "hello world", 2 * time.Second},
		{"empty text clamps to min", "", 2 * time.Second},
		{"whitespace only", "   \t\n", 2 * time.Second},
		{"words within range", "one two three four five six seven eight", 3200 * time.Millisecond},
		{"many words clamp to max", "a b c d e f g h i j k l m n o p q r s t", 6 * time.Second},
		{"ten ideographs", "今天天气很好我们出去", 2500 * time.Millisecond},
		{"ideographs with punctuation", "今天天气很好，我们出去。", 2500 * time.Millisecond},
		{"few ideographs clamp to min", "你好", 2 * time.Second},
		{"many ideographs clamp to max", "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十", 6 * time.Second},
		{"mixed script counts words", "hello 世界 again", 2 * time.Second},
		{"digits only count as words", "1 2 3 4 5 6", 2400 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Duration(tt.text)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, e.Min)
			assert.LessOrEqual(t, got, e.Max)
		})
	}
}

func TestEstimator_CustomRates(t *testing.T) {
	e := Estimator{PerWord: time.Second, Min: time.Second}

	// A zero Max leaves the upper end open.
	assert.Equal(t, 12*time.Second, e.Duration("a b c d e f g h i j k l"))
}
