// Package estimate derives a speaking duration from text length.
package estimate

import (
	"strings"
	"time"
	"unicode"
)

// Estimator converts text into a clamped duration.
// Text whose letters are all Han ideographs is measured per character;
// anything else is measured per whitespace-delimited word.
type Estimator struct {
	// PerWord is the time allotted to one space-delimited word.
	PerWord time.Duration
	// PerChar is the time allotted to one ideograph.
	PerChar time.Duration
	// Min and Max bound the result.
	Min time.Duration
	Max time.Duration
}

// Default returns an Estimator with the stock per-unit rates and [2s, 6s] bounds.
func Default() Estimator {
	return Estimator{
		PerWord: 400 * time.Millisecond,
		PerChar: 250 * time.Millisecond,
		Min:     2 * time.Second,
		Max:     6 * time.Second,
	}
}

// Duration returns the estimated duration of text.
func (e Estimator) Duration(text string) time.Duration {
	var d time.Duration
	if n, ok := ideographs(text); ok {
		d = time.Duration(n) * e.PerChar
	} else {
		d = time.Duration(len(strings.Fields(text))) * e.PerWord
	}
	return e.clamp(d)
}

func (e Estimator) clamp(d time.Duration) time.Duration {
	if d < e.Min {
		return e.Min
	}
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// ideographs counts Han characters. ok is false when text contains no
// letters or any letter outside the Han script.
func ideographs(text string) (n int, ok bool) {
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.Is(unicode.Han, r) {
			return 0, false
		}
		n++
	}
	return n, n > 0
}
