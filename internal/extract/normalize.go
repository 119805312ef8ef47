package extract

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// twoTo64 wraps negative identifiers to their unsigned 64-bit value.
	twoTo64 = new(big.Int).Lsh(big.NewInt(1), 64)

	// unicodeEscapeRe matches escape sequences left in names, e.g. `\u0026`.
	unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

	// plusCodePrefixRe splits "7JVW+9M8 Example Cafe" into the code and the name.
	plusCodePrefixRe = regexp.MustCompile(`^[A-Za-z0-9]{4}\+[A-Za-z0-9]+ (.+)$`)
)

// NormalizeIdentifier returns the canonical decimal CID for a raw identifier.
// Non-negative values are returned unchanged; negative values are reinterpreted as
// unsigned 64-bit two's complement, e.g. "-4611686018427381467" -> "13835058055282170149".
func NormalizeIdentifier(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", false
	}
	if v.Sign() >= 0 {
		return raw, true
	}
	// Euclidean modulus keeps the result in [0, 2^64).
	return v.Mod(v, twoTo64).String(), true
}

// CleanName decodes leftover \uXXXX escapes, strips a leading plus code and trims
// the result. Clean input comes back unchanged apart from trimming.
func CleanName(name string) string {
	name = unicodeEscapeRe.ReplaceAllStringFunc(name, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
	name = norm.NFC.String(name)

	if m := plusCodePrefixRe.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(name)
}

// CanonicalIdentifier normalizes raw and accepts it only if the result is a
// 15–25 digit CID.
func CanonicalIdentifier(raw string) (string, bool) {
	id, ok := NormalizeIdentifier(raw)
	if !ok || !isCanonicalIdentifier(id) {
		return "", false
	}
	return id, true
}
