// Package schema ingests Paramdef/Meta XML schemas and computes the
// bit-exact field layout of the C struct each Paramdef describes (§4.6/§4.7).
package schema

import (
	"encoding/xml"
	"regexp"
	"strconv"

	"github.com/scigolib/paramdex/internal/utils"
)

// StorageType is the integer type that actually backs a field in memory:
// every DefBaseType resolves to exactly one of these for sizing and
// alignment purposes.
type StorageType uint8

const (
	StorageU8 StorageType = iota
	StorageI8
	StorageU16
	StorageI16
	StorageU32
	StorageI32
	StorageF32
)

// SizeBits returns the storage type's width in bits.
func (s StorageType) SizeBits() int {
	switch s {
	case StorageU8, StorageI8:
		return 8
	case StorageU16, StorageI16:
		return 16
	default:
		return 32
	}
}

// AlignBits returns the storage type's required alignment in bits. Every
// storage type in this format is naturally aligned, so this equals SizeBits.
func (s StorageType) AlignBits() int { return s.SizeBits() }

// GoType returns the Go type name used to represent this storage type in
// generated code.
func (s StorageType) GoType() string {
	switch s {
	case StorageU8:
		return "uint8"
	case StorageI8:
		return "int8"
	case StorageU16:
		return "uint16"
	case StorageI16:
		return "int16"
	case StorageU32:
		return "uint32"
	case StorageI32:
		return "int32"
	case StorageF32:
		return "float32"
	default:
		return "uint8"
	}
}

// DefBaseType is one of the ten base field types a paramdef declaration may
// name (§3 "DefType").
type DefBaseType uint8

const (
	BaseDummy8 DefBaseType = iota
	BaseS8
	BaseU8
	BaseS16
	BaseU16
	BaseS32
	BaseU32
	BaseF32
	BaseFixstr
	BaseFixstrW
)

var baseTypeNames = map[string]DefBaseType{
	"dummy8":  BaseDummy8,
	"s8":      BaseS8,
	"u8":      BaseU8,
	"s16":     BaseS16,
	"u16":     BaseU16,
	"s32":     BaseS32,
	"u32":     BaseU32,
	"f32":     BaseF32,
	"fixstr":  BaseFixstr,
	"fixstrW": BaseFixstrW,
}

// ParseDefBaseType resolves a paramdef's lowercase type keyword.
func ParseDefBaseType(s string) (DefBaseType, bool) {
	v, ok := baseTypeNames[s]
	return v, ok
}

// Storage returns the integer storage type backing this base type. Dummy8
// shares U8's layout (§4.7 edge cases) but is emitted as private padding by
// the code generator; Fixstr/FixstrW are raw char arrays backed by I8/I16.
func (b DefBaseType) Storage() StorageType {
	switch b {
	case BaseDummy8:
		return StorageU8
	case BaseS8:
		return StorageI8
	case BaseU8:
		return StorageU8
	case BaseS16:
		return StorageI16
	case BaseU16:
		return StorageU16
	case BaseS32:
		return StorageI32
	case BaseU32:
		return StorageU32
	case BaseF32:
		return StorageF32
	case BaseFixstr:
		return StorageI8
	case BaseFixstrW:
		return StorageI16
	default:
		return StorageU8
	}
}

// ModifierKind selects which of the three mutually-exclusive field-shape
// modifiers a DefType carries.
type ModifierKind uint8

const (
	ModNone ModifierKind = iota
	ModArray
	ModBitfield
)

// Modifier is None, Array(Length), or Bitfield(Width) — the grammar in §6
// makes these mutually exclusive, so an array of bitfields cannot even be
// parsed (§4.7 edge case "disallowed").
type Modifier struct {
	Kind   ModifierKind
	Length int // valid when Kind == ModArray
	Width  int // valid when Kind == ModBitfield
}

// DefType is a parsed C-style field declaration, e.g. "u8 flags:3" or
// "f32 position[3]".
type DefType struct {
	Name     string
	Base     DefBaseType
	Modifier Modifier
}

// fieldDeclRe matches the paramdef field grammar from §6: a base type, a
// name, an optional array-size or bitfield-width suffix, and an optional
// trailing default-value assignment that this implementation ignores.
var fieldDeclRe = regexp.MustCompile(
	`^(?P<base>[\w\d_]+)\s+(?P<name>[\w\d_]+)\s*((\[(?P<array_size>[\w\d]+)\])|(:\s*(?P<bitfield_size>[\w\d]+)))?\s*(=.*)?$`,
)

func reGroup(re *regexp.Regexp, m []string, name string) string {
	for i, n := range re.SubexpNames() {
		if n == name {
			return m[i]
		}
	}
	return ""
}

// ParseDefType parses one paramdef field declaration string.
func ParseDefType(decl string) (DefType, error) {
	m := fieldDeclRe.FindStringSubmatch(decl)
	if m == nil {
		return DefType{}, utils.InvalidDataf("paramdef field", "malformed C struct field declaration %q", decl)
	}

	baseStr := reGroup(fieldDeclRe, m, "base")
	base, ok := ParseDefBaseType(baseStr)
	if !ok {
		return DefType{}, utils.InvalidDataf("paramdef field", "unknown base type %q in %q", baseStr, decl)
	}

	mod := Modifier{Kind: ModNone}
	if as := reGroup(fieldDeclRe, m, "array_size"); as != "" {
		n, err := strconv.ParseInt(as, 0, 32)
		if err != nil {
			return DefType{}, utils.InvalidDataf("paramdef field", "invalid array size %q in %q", as, decl)
		}
		mod = Modifier{Kind: ModArray, Length: int(n)}
	} else if bs := reGroup(fieldDeclRe, m, "bitfield_size"); bs != "" {
		w, err := strconv.ParseInt(bs, 0, 32)
		if err != nil {
			return DefType{}, utils.InvalidDataf("paramdef field", "invalid bitfield width %q in %q", bs, decl)
		}
		mod = Modifier{Kind: ModBitfield, Width: int(w)}
	}

	return DefType{Name: reGroup(fieldDeclRe, m, "name"), Base: base, Modifier: mod}, nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr so a DefType can be parsed
// directly out of a Field element's Def="..." attribute.
func (t *DefType) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := ParseDefType(attr.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr so a DefBaseType can be
// parsed directly out of a meta Enum element's type="..." attribute.
func (b *DefBaseType) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, ok := ParseDefBaseType(attr.Value)
	if !ok {
		return utils.InvalidDataf("param meta enum", "unknown base type %q", attr.Value)
	}
	*b = parsed
	return nil
}
