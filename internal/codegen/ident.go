// Package codegen emits layout-faithful Go record declarations from a
// layout-resolved schema.Paramdef: one struct field per non-bitfield
// schema field, a packed private byte array plus accessors per run of
// bitfield schema fields, and optional enum types, row-name constants, and
// reflection tables (§4.8). The struct/field layout strategy and naming
// are grounded on original_source/src/codegen.rs's gen_paramdef/gen_enum,
// adapted to idiomatic Go (exported-by-default fields, Go-style
// Name()/SetName()/UpdateName() accessors instead of suffix methods,
// gofmt'd output).
package codegen

import (
	"strings"
	"unicode"
)

const asciiLimit = 0x80

// identChars keeps ASCII letters, digits, and underscore — every character
// Go identifiers allow — so a paramdef field or param type name that's
// already a valid identifier (the common case; these names come straight
// out of the original C structs) passes through unchanged.
func identChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < asciiLimit && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// alnumChars keeps only ASCII letters and digits, dropping underscores too.
// This mirrors the source tool's enum-variant sanitizer exactly
// (`c.is_ascii_alphanumeric()`, §9 open question), which is stricter than
// identChars and is used only for enum option names.
func alnumChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < asciiLimit && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func withCase(ident string, export bool) string {
	if ident == "" {
		if export {
			return "Field"
		}
		return "field"
	}
	r := []rune(ident)
	if !unicode.IsLetter(r[0]) {
		if export {
			r = append([]rune{'X'}, r...)
		} else {
			r = append([]rune{'x'}, r...)
		}
	} else if export {
		r[0] = unicode.ToUpper(r[0])
	} else {
		r[0] = unicode.ToLower(r[0])
	}
	return string(r)
}

// exportName produces an exported (capitalized) Go identifier from a raw
// paramdef field or param type name, keeping underscores intact.
func exportName(s string) string {
	return withCase(identChars(s), true)
}

// privateName produces an unexported Go identifier from a raw name,
// keeping underscores intact.
func privateName(s string) string {
	return withCase(identChars(s), false)
}

// sanitizeIdent is alnumChars followed by export-casing, used for meta enum
// option names exactly as the source tool sanitizes them (§9).
func sanitizeIdent(s string) string {
	return withCase(alnumChars(s), true)
}
