// Package textengine derives short descriptive text from work metadata:
// curated labels, search snippets, overview text, recommendation reasons
// and fun facts. Everything here is pure and deterministic.
package textengine

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"readdit/pkg/models"
)

// Ellipsis is appended by SmartTrim when it shortens a string.
const Ellipsis = "…"

// NormalizeTitle folds a title for identity comparison: lowercase,
// "&" becomes "and", everything but letters and digits is dropped.
// Non-Latin scripts are kept, so "ノルウェイの森" stays non-empty.
func NormalizeTitle(t string) string {
	t = strings.ReplaceAll(strings.ToLower(t), "&", "and")
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SmartTrim shortens s to at most max runes. It cuts at max-1, backs off
// to the last space when that space lies beyond index 40, and appends
// Ellipsis.
func SmartTrim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	cut := r[:max-1]
	last := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == ' ' {
			last = i
			break
		}
	}
	if last > 40 {
		cut = cut[:last]
	}
	return strings.TrimSpace(string(cut)) + Ellipsis
}

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// StableHash is FNV-1a over the UTF-16 code units of s, one unit per
// step. For ASCII input it equals the byte-wise 32-bit FNV-1a.
func StableHash(s string) uint32 {
	h := uint32(fnvOffset32)
	for _, u := range utf16.Encode([]rune(s)) {
		h ^= uint32(u)
		h *= fnvPrime32
	}
	return h
}

// SafeAuthorName returns the trimmed name, or "" for blanks and the
// unknown-author sentinel.
func SafeAuthorName(name string) string {
	a := strings.TrimSpace(name)
	if a == "" || strings.Contains(strings.ToLower(a), models.UnknownAuthor) {
		return ""
	}
	return a
}

// FormatYear renders a positive year, or "".
func FormatYear(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
