package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scigolib/paramdex/internal/schema"
)

// dedupeVariantNames appends a disambiguating numeric suffix to any variant
// name that collides after sanitization, rather than rejecting the schema
// outright (§9 open question: "the enum-variant name sanitizer drops
// non-alphanumeric characters, which can produce duplicate variants... the
// source does not de-duplicate"). This implementation picks the
// disambiguate-don't-reject option so a single odd enum doesn't block
// generating everything else in the paramdef.
func dedupeVariantNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if c := seen[n]; c > 1 {
			out[i] = n + "_" + strconv.Itoa(c)
		} else {
			out[i] = n
		}
	}
	return out
}

// enumTypeName is the exported Go type name generated for a meta enum.
func enumTypeName(enum schema.ParamMetaEnum) string {
	return exportName(enum.Name)
}

// GenerateEnum emits a named integer type and one constant per declared
// option for a PARAMMETA enum (§4.8 "If field_enums is enabled... the
// field's declared type becomes that enum"). Enums whose base type is f32
// cannot be represented as a named Go integer type, so callers must not
// call GenerateEnum for those (see CanUseEnum).
func GenerateEnum(enum schema.ParamMetaEnum) (string, error) {
	if !CanUseEnum(enum) {
		return "", fmt.Errorf("codegen: enum %q has base type f32, not representable as an integer enum", enum.Name)
	}

	typeName := enumTypeName(enum)
	goType := enum.BaseType.Storage().GoType()

	rawNames := make([]string, len(enum.Options))
	for i, opt := range enum.Options {
		rawNames[i] = sanitizeIdent(opt.Name)
	}
	names := dedupeVariantNames(rawNames)

	var b strings.Builder
	fmt.Fprintf(&b, "// %s is a generated enum type for the %q meta declaration.\n", typeName, enum.Name)
	fmt.Fprintf(&b, "type %s %s\n\n", typeName, goType)

	if len(enum.Options) > 0 {
		b.WriteString("const (\n")
		for i, opt := range enum.Options {
			fmt.Fprintf(&b, "\t%s%s %s = %d\n", typeName, names[i], typeName, opt.Value)
		}
		b.WriteString(")\n")
	}

	return b.String(), nil
}

// CanUseEnum reports whether enum can back a field's declared Go type
// (§4.8): any enum whose own base type is not f32.
func CanUseEnum(enum schema.ParamMetaEnum) bool {
	return enum.BaseType != schema.BaseF32
}

// EnumVariantName returns the declared option name for value, sanitized and
// exported, or the numeric value formatted as a fallback identifier when no
// option declares it. Generate does not call it.
func EnumVariantName(enum schema.ParamMetaEnum, value int64) string {
	if name, ok := enum.OptionName(value); ok {
		return sanitizeIdent(name)
	}
	return strconv.FormatInt(value, 10)
}
