// Package bwp implements the symmetric text obfuscation the server
// applies to RPC bodies.
//
// An obfuscated payload is a sequence of 16-bit character codes:
//
//	[marker][keyCountChar][keyChars...][bodyChars...]
//
// where marker is 0x00A4, keyCountChar is 48+keyCount, keyChars[i] is
// 48+key[i]+(i mod 11) and bodyChars[i] is plain[i]+key[i mod keyCount]
// minus (i mod 17), everything modulo 2^16. The transform is symmetric:
// decoding subtracts what encoding added.
package bwp

import (
	"errors"
	"math/rand/v2"
)

// Marker is the code point that introduces an obfuscated payload.
const Marker = 0x00A4

const (
	mask        = 0xFFFF
	charBase    = 48
	minKeyCount = 4
	maxKeyCount = 38 // exclusive
	maxKeyValue = 15 // exclusive
)

var (
	ErrTruncatedHeader = errors.New("bwp: truncated key header")
	ErrBadKeyCount     = errors.New("bwp: invalid key count")
)

// Message is the result of decoding a payload. It is immutable once
// constructed.
type Message struct {
	Raw          string
	IsEncoded    bool
	Keys         []int
	Decoded      string
	HeaderLength int
}

// IsObfuscated reports whether text starts with the obfuscation marker.
func IsObfuscated(text string) bool {
	for _, r := range text {
		return r == Marker
	}

	return false
}

// Decode reverses the obfuscation. Payloads that do not start with the
// marker pass through unchanged with IsEncoded=false.
func Decode(text string) (*Message, error) {
	if !IsObfuscated(text) {
		return &Message{Raw: text, Decoded: text}, nil
	}

	chars := []rune(text)

	if len(chars) < 2 {
		return nil, ErrTruncatedHeader
	}

	keyCount := int(chars[1]) - charBase
	if keyCount < 1 {
		return nil, ErrBadKeyCount
	}

	headerLen := 2 + keyCount
	if len(chars) < headerLen {
		return nil, ErrTruncatedHeader
	}

	keys := make([]int, keyCount)
	for i := range keys {
		keys[i] = int(chars[2+i]) - charBase - (i % 11)
	}

	body := chars[headerLen:]
	decoded := make([]rune, len(body))

	for i, c := range body {
		decoded[i] = rune((int(c) - keys[i%keyCount] + (i % 17)) & mask)
	}

	return &Message{
		Raw:          text,
		IsEncoded:    true,
		Keys:         keys,
		Decoded:      string(decoded),
		HeaderLength: headerLen,
	}, nil
}

// Encode obfuscates text with the given keystream. An empty keystream
// selects a random one the way the upstream client does: between 4 and
// 37 keys, each in [0,15).
func Encode(text string, keys []int) string {
	if len(keys) == 0 {
		keys = randomKeys()
	}

	body := []rune(text)
	out := make([]rune, 0, 2+len(keys)+len(body))

	out = append(out, Marker)
	out = append(out, rune((charBase+len(keys))&mask))

	for i, k := range keys {
		out = append(out, rune((charBase+k+(i%11))&mask))
	}

	for i, c := range body {
		out = append(out, rune((int(c)+keys[i%len(keys)]-(i%17))&mask))
	}

	return string(out)
}

func randomKeys() []int {
	keys := make([]int, minKeyCount+rand.IntN(maxKeyCount-minKeyCount))
	for i := range keys {
		keys[i] = rand.IntN(maxKeyValue)
	}

	return keys
}
