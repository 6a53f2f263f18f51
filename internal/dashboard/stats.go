// Package dashboard computes dataset statistics from the manifest and
// serves them over HTTP for a browser view.
package dashboard

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"lectern/internal/manifest"
)

// Stats aggregates dataset-level numbers the dashboard displays.
type Stats struct {
	Utterances    int             `json:"utterances"`
	TotalHours    float64         `json:"total_hours"`
	MeanDuration  float64         `json:"mean_duration"`
	MinDuration   float64         `json:"min_duration"`
	MaxDuration   float64         `json:"max_duration"`
	VocabSize     int             `json:"vocab_size"`
	TotalWords    int             `json:"total_words"`
	AlphabetSize  int             `json:"alphabet_size"`
	Alphabet      []CharCount     `json:"alphabet"`
	DurationHist  []HistogramBin  `json:"duration_histogram"`
	WordCountHist []HistogramBin  `json:"word_count_histogram"`
	CharCountHist []HistogramBin  `json:"char_count_histogram"`
	TopWords      []WordFrequency `json:"top_words"`
}

// CharCount is one alphabet entry with its occurrence count.
type CharCount struct {
	Char  string `json:"char"`
	Count int    `json:"count"`
}

// WordFrequency is one vocabulary entry with its occurrence count.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// HistogramBin is a half-open [Lo, Hi) bucket with its sample count.
type HistogramBin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

const (
	histogramBins = 20
	topWordsLimit = 25
)

// Compute derives dataset statistics from manifest entries.
func Compute(entries []manifest.Entry) Stats {
	stats := Stats{Utterances: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	var totalSeconds float64
	minDur, maxDur := entries[0].Duration, entries[0].Duration
	durations := make([]float64, 0, len(entries))
	wordCounts := make([]float64, 0, len(entries))
	charCounts := make([]float64, 0, len(entries))
	vocab := make(map[string]int)
	alphabet := make(map[rune]int)

	for _, entry := range entries {
		totalSeconds += entry.Duration
		durations = append(durations, entry.Duration)
		if entry.Duration < minDur {
			minDur = entry.Duration
		}
		if entry.Duration > maxDur {
			maxDur = entry.Duration
		}

		words := strings.Fields(entry.Text)
		wordCounts = append(wordCounts, float64(len(words)))
		charCounts = append(charCounts, float64(len([]rune(entry.Text))))
		stats.TotalWords += len(words)
		for _, word := range words {
			vocab[word]++
		}
		for _, r := range entry.Text {
			if unicode.IsSpace(r) {
				continue
			}
			alphabet[r]++
		}
	}

	stats.TotalHours = round3(totalSeconds / 3600)
	stats.MeanDuration = round3(totalSeconds / float64(len(entries)))
	stats.MinDuration = round3(minDur)
	stats.MaxDuration = round3(maxDur)
	stats.VocabSize = len(vocab)
	stats.AlphabetSize = len(alphabet)
	stats.Alphabet = sortedCharCounts(alphabet)
	stats.DurationHist = histogram(durations, histogramBins)
	stats.WordCountHist = histogram(wordCounts, histogramBins)
	stats.CharCountHist = histogram(charCounts, histogramBins)
	stats.TopWords = topWords(vocab, topWordsLimit)
	return stats
}

func sortedCharCounts(counts map[rune]int) []CharCount {
	out := make([]CharCount, 0, len(counts))
	for r, count := range counts {
		out = append(out, CharCount{Char: string(r), Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

func topWords(vocab map[string]int, limit int) []WordFrequency {
	out := make([]WordFrequency, 0, len(vocab))
	for word, count := range vocab {
		out = append(out, WordFrequency{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []HistogramBin{{Lo: lo, Hi: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{
			Lo: round3(lo + float64(i)*width),
			Hi: round3(lo + float64(i+1)*width),
		}
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
