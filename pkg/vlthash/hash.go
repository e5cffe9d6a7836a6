// Package vlthash implements the 32-bit string hash game databases use to
// derive integer identifiers from symbolic names.
//
// The function is Bob Jenkins' lookup2 hash seeded with 0xABCDEF00, applied
// to the ASCII encoding of the string.
package vlthash

import "unicode/utf8"

// Seed is the initial value mixed into every hash
const Seed uint32 = 0xABCDEF00

const golden uint32 = 0x9e3779b9

// Hash32 returns the identifier hash of s. The empty string hashes to 0.
func Hash32(s string) uint32 {
	if s == "" {
		return 0
	}
	return Sum32(asciiBytes(s), Seed)
}

// Hash32Signed is Hash32 reinterpreted as a two's-complement signed value
func Hash32Signed(s string) int32 {
	return int32(Hash32(s))
}

// Sum32 hashes raw bytes with the given initial value
func Sum32(k []byte, init uint32) uint32 {
	a, b, c := golden, golden, init
	length := len(k)

	for len(k) >= 12 {
		a += le32(k[0:4])
		b += le32(k[4:8])
		c += le32(k[8:12])
		a, b, c = mix(a, b, c)
		k = k[12:]
	}

	c += uint32(length)
	// Low byte of c is reserved for the length
	switch len(k) {
	case 11:
		c += uint32(k[10]) << 24
		fallthrough
	case 10:
		c += uint32(k[9]) << 16
		fallthrough
	case 9:
		c += uint32(k[8]) << 8
		fallthrough
	case 8:
		b += uint32(k[7]) << 24
		fallthrough
	case 7:
		b += uint32(k[6]) << 16
		fallthrough
	case 6:
		b += uint32(k[5]) << 8
		fallthrough
	case 5:
		b += uint32(k[4])
		fallthrough
	case 4:
		a += uint32(k[3]) << 24
		fallthrough
	case 3:
		a += uint32(k[2]) << 16
		fallthrough
	case 2:
		a += uint32(k[1]) << 8
		fallthrough
	case 1:
		a += uint32(k[0])
	}

	_, _, c = mix(a, b, c)
	return c
}

func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= b
	a -= c
	a ^= c >> 13
	b -= c
	b -= a
	b ^= a << 8
	c -= a
	c -= b
	c ^= b >> 13
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 16
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 3
	b -= c
	b -= a
	b ^= a << 10
	c -= a
	c -= b
	c ^= b >> 15
	return a, b, c
}

func le32(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

// asciiBytes encodes s as ASCII, replacing every non-ASCII rune with '?'
func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			out = append(out, s[i])
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		out = append(out, '?')
		i += size
	}
	return out
}
