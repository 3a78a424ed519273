// Package shortid generates compact click identifiers and embeds them
// invisibly into message text using zero-width characters.
//
// Encoding: each alphabet symbol maps to 6 bits; bit 0 is U+200B
// (zero-width space) and bit 1 is U+200C (zero-width non-joiner). The
// bit run is wrapped in a four-symbol envelope built from the same two
// code points in opposite order, so boundaries are distinguishable from
// payload by position alone.
package shortid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet is the fixed 64-symbol, URL-safe alphabet. Index 0 is '_';
// each symbol encodes exactly 6 bits. Must stay in sync with any
// external producer of embedded ids.
const Alphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	zw0 = '​' // bit 0, zero-width space
	zw1 = '‌' // bit 1, zero-width non-joiner

	bitsPerChar = 6

	// Decoded tokens outside this range are treated as coincidental
	// zero-width runs, not ids.
	minTokenLen = 4
	maxTokenLen = 16
)

// DefaultLength is the token length used for newly generated ids.
const DefaultLength = 8

var (
	envelopeStart = string(zw0) + string(zw1)
	envelopeEnd   = string(zw1) + string(zw0)
)

// Generate returns a cryptographically random token of the given length
// drawn from Alphabet. Length zero or negative falls back to DefaultLength.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(length)
	for _, by := range buf {
		b.WriteByte(Alphabet[int(by)%len(Alphabet)])
	}
	return b.String(), nil
}

// Encode converts a shortId into its invisible envelope: start marker,
// 6 bits per character as zero-width symbols, end marker.
func Encode(shortID string) (string, error) {
	var b strings.Builder
	b.WriteString(envelopeStart)

	for _, ch := range shortID {
		idx := strings.IndexRune(Alphabet, ch)
		if idx < 0 {
			return "", fmt.Errorf("shortid contains invalid character %q", ch)
		}
		for bit := bitsPerChar - 1; bit >= 0; bit-- {
			if idx&(1<<bit) != 0 {
				b.WriteRune(zw1)
			} else {
				b.WriteRune(zw0)
			}
		}
	}

	b.WriteString(envelopeEnd)
	return b.String(), nil
}

// Inject embeds the encoded shortId immediately after the first codepoint
// of the message. The envelope never sits at the very start or end so that
// clients trimming leading or trailing invisible runs do not destroy it.
// An empty message is returned unchanged.
func Inject(message, shortID string) (string, error) {
	if message == "" {
		return message, nil
	}

	envelope, err := Encode(shortID)
	if err != nil {
		return "", err
	}

	runes := []rune(message)
	return string(runes[0]) + envelope + string(runes[1:]), nil
}

// Decode scans text for an embedded envelope anywhere in the string and
// returns the decoded shortId. Malformed or implausible runs decode to
// ("", false) rather than an error: a stray zero-width sequence in an
// inbound message must never break attribution.
func Decode(text string) (string, bool) {
	runes := []rune(text)
	payload, _, _, found := findEnvelope(runes, 0)
	if !found {
		return "", false
	}

	if len(payload) == 0 || len(payload)%bitsPerChar != 0 {
		return "", false
	}

	var b strings.Builder
	for i := 0; i < len(payload); i += bitsPerChar {
		idx := 0
		for _, r := range payload[i : i+bitsPerChar] {
			idx <<= 1
			if r == zw1 {
				idx |= 1
			}
		}
		if idx >= len(Alphabet) {
			return "", false
		}
		b.WriteByte(Alphabet[idx])
	}

	token := b.String()
	if len(token) < minTokenLen || len(token) > maxTokenLen {
		return "", false
	}
	return token, true
}

// Strip removes every envelope (markers and payload) from text, leaving
// the message exactly as a human reads it. Stripping is idempotent.
func Strip(text string) string {
	runes := []rune(text)
	var out []rune
	pos := 0
	for {
		_, start, end, found := findEnvelope(runes, pos)
		if !found {
			out = append(out, runes[pos:]...)
			break
		}
		out = append(out, runes[pos:start]...)
		pos = end
	}
	return string(out)
}

// findEnvelope locates the first full envelope at or after offset.
// It returns the payload runes between the markers, the index of the
// envelope start, and the index just past the envelope end.
//
// The start marker is zw0 zw1 followed by a run of zero-width symbols
// terminated by zw1 zw0. Matching is greedy on the payload: the end
// marker is the last zw1 zw0 pair before the run of zero-width symbols
// ends, mirroring how a regex `(zw0 zw1)([zw0 zw1]+)(zw1 zw0)` matches.
func findEnvelope(runes []rune, offset int) (payload []rune, start, end int, found bool) {
	for i := offset; i+3 < len(runes); i++ {
		if runes[i] != zw0 || runes[i+1] != zw1 {
			continue
		}

		// Extent of the contiguous zero-width run following the start marker.
		j := i + 2
		for j < len(runes) && (runes[j] == zw0 || runes[j] == zw1) {
			j++
		}

		// Greedy: search backwards for the end marker within the run.
		for k := j - 2; k >= i+3; k-- {
			if runes[k] == zw1 && runes[k+1] == zw0 {
				return runes[i+2 : k], i, k + 2, true
			}
		}
	}
	return nil, 0, 0, false
}
