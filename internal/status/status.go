// Package status maps backend status tokens to display badges so every page
// renders the same colour and wording for a given status.
package status

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tone is the colour class of a badge.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// Badge is what presentation code needs to render a status.
type Badge struct {
	Token string
	Label string
	Tone  Tone
}

var tones = map[string]Tone{
	"approved":                    ToneSuccess,
	"passed":                      ToneSuccess,
	"pending":                     ToneWarning,
	"pending_review":              ToneWarning,
	"pending_government_approval": ToneWarning,
	"rejected":                    ToneDanger,
	"failed":                      ToneDanger,
}

var labels = map[string]string{
	"pending_government_approval": "Pending Government Approval",
	"pending_review":              "Pending Review",
}

// Lookup returns the badge for a status token. Tokens are matched
// case-insensitively and runs of whitespace count as one underscore; unknown
// tokens get the neutral tone.
func Lookup(token string) Badge {
	key := canonical(token)
	tone, ok := tones[key]
	if !ok {
		tone = ToneNeutral
	}
	return Badge{Token: key, Label: label(key), Tone: tone}
}

// LookupWithLabel is Lookup with a caller-supplied label taking precedence.
func LookupWithLabel(token, override string) Badge {
	b := Lookup(token)
	if override != "" {
		b.Label = override
	}
	return b
}

// ClassName is the CSS class used by the templates.
func (b Badge) ClassName() string {
	return "badge badge-" + string(b.Tone)
}

// canonical lower-cases token and joins its words with underscores, so
// "Pending Review" and "pending_review" are the same status.
func canonical(token string) string {
	return strings.Join(strings.Fields(strings.ToLower(token)), "_")
}

func label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	if key == "" {
		return ""
	}
	spaced := strings.ReplaceAll(key, "_", " ")
	first, size := utf8.DecodeRuneInString(spaced)
	return string(unicode.ToUpper(first)) + spaced[size:]
}
