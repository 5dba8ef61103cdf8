package router

import (
	"strconv"
	"strings"
)

// selfTokens are the words that mean "no explicit target": the requester is
// both issuer and subject. Includes the localized forms the classifier is
// known to emit.
var selfTokens = map[string]struct{}{
	"me":     {},
	"myself": {},
	"eu":     {},
	"mim":    {},
	"você":   {},
	"voce":   {},
	"vc":     {},
}

// IsSelfReference reports whether a target token refers back to the
// requester.
func IsSelfReference(token string) bool {
	_, ok := selfTokens[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// ParseMentionID extracts a numeric identity from a platform mention token.
// Decoration characters (<, >, @, !) are stripped; the remainder must be all
// digits. Returns false for plain names, which fall through to name lookup.
func ParseMentionID(token string) (int64, bool) {
	cleaned := strings.NewReplacer("<", "", ">", "", "@", "", "!", "").Replace(strings.TrimSpace(token))
	if cleaned == "" {
		return 0, false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
