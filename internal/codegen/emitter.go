package codegen

import (
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/scigolib/paramdex/internal/schema"
)

// Generate emits one formatted Go source file declaring a layout-faithful
// record type for def, plus any enum types opts.FieldEnums pulls in and an
// optional reflection table, in package pkg (§4.8). The returned struct's
// field order and synthetic bitfield-storage arrays reproduce def's
// bit-exact layout: Go's own alignment rules for naturally-aligned scalar
// and array fields (1/2/4 bytes) already match the C layout computed by
// schema.ComputeLayout, so only bitfield runs need an explicit packed
// representation.
func Generate(pkg string, def *schema.Paramdef, meta *schema.ParamMeta, opts Options) (string, error) {
	structName := exportName(def.ParamType)
	items := groupFields(def.Fields.Field)

	var fieldMetaByName map[string]schema.ParamMetaField
	var enumsByName map[string]schema.ParamMetaEnum
	if meta != nil {
		fieldMetaByName = meta.FieldsByName()
		enumsByName = meta.EnumsByName()
	}

	usedEnums := map[string]schema.ParamMetaEnum{}
	needsBinary := false
	for _, it := range items {
		if len(it.run) > 0 {
			for _, f := range it.run {
				if f.FieldDef.Base.Storage().SizeBits() > 8 {
					needsBinary = true
				}
			}
		}
	}

	// Bitfield runs are named "bitfieldN" by declaration order, matching
	// original_source/src/codegen.rs's gen_paramdef pad-naming scheme
	// (`_bitfield{}`) rather than deriving a name from the run's first field.
	runNumber := make(map[int]int, len(items))
	n := 0
	for idx, it := range items {
		if it.run != nil {
			n++
			runNumber[idx] = n
		}
	}

	var body strings.Builder
	fmt.Fprintf(&body, "// %s is a layout-faithful record for the %q param type.\n", structName, def.ParamType)
	fmt.Fprintf(&body, "// Generated from a %d-byte paramdef layout; field order matches the\n", def.SizeBytes)
	body.WriteString("// original declaration order exactly.\n")
	fmt.Fprintf(&body, "type %s struct {\n", structName)

	prevEnd := 0
	for idx, it := range items {
		if it.field != nil {
			writeScalarField(&body, it.field, fieldMetaByName, enumsByName, usedEnums, opts)
			size := it.field.FieldDef.Base.Storage().SizeBits() / 8
			if it.field.FieldDef.Modifier.Kind == schema.ModArray {
				size *= it.field.FieldDef.Modifier.Length
			}
			prevEnd = *it.field.BitOffset/8 + size
			continue
		}
		runName := fmt.Sprintf("bitfield%d", runNumber[idx])
		start, end := runSpan(it.run)
		// A byte array is only 1-byte aligned, so the gap the layout leaves
		// before a wider storage word has to be spelled out.
		if start > prevEnd {
			fmt.Fprintf(&body, "\t_ [%d]byte // padding, bytes [%d:%d)\n", start-prevEnd, prevEnd, start)
		}
		fmt.Fprintf(&body, "\t%s [%d]byte // packed bitfields, bytes [%d:%d)\n", runName, end-start, start, end)
		prevEnd = end
	}
	body.WriteString("}\n\n")

	// Bitfield accessors, one get/set/update trio per logical bitfield.
	for idx, it := range items {
		if it.run == nil {
			continue
		}
		runName := fmt.Sprintf("bitfield%d", runNumber[idx])
		start, _ := runSpan(it.run)
		for _, f := range it.run {
			writeBitfieldAccessors(&body, structName, runName, start, f, bool(def.BigEndian), opts)
		}
	}

	if opts.Reflection {
		writeReflectionTable(&body, structName, def)
	}

	// Enum types referenced by field_enums, in stable (sorted) order.
	if len(usedEnums) > 0 {
		names := make([]string, 0, len(usedEnums))
		for n := range usedEnums {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			enumSrc, err := GenerateEnum(usedEnums[n])
			if err != nil {
				return "", err
			}
			body.WriteString(enumSrc)
			body.WriteString("\n")
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "package %s\n\n", pkg)
	if needsBinary {
		out.WriteString("import \"encoding/binary\"\n\n")
	}
	out.WriteString(body.String())

	formatted, err := format.Source([]byte(out.String()))
	if err != nil {
		return "", fmt.Errorf("codegen: formatting generated source for %q: %w", def.ParamType, err)
	}
	return string(formatted), nil
}

func writeScalarField(b *strings.Builder, f *schema.DefField, fieldMeta map[string]schema.ParamMetaField, enums map[string]schema.ParamMetaEnum, used map[string]schema.ParamMetaEnum, opts Options) {
	fm, hasMeta := fieldMeta[f.FieldDef.Name]

	if opts.Docs {
		for _, line := range docLines(f, fm, hasMeta) {
			fmt.Fprintf(b, "\t// %s\n", line)
		}
	}

	name := exportName(f.FieldDef.Name)
	isDummy := f.FieldDef.Base == schema.BaseDummy8
	if isDummy && opts.PrivateDummy8 {
		name = privateName(f.FieldDef.Name)
	}

	goType := scalarGoType(f, fm, hasMeta, enums, used, opts)
	fmt.Fprintf(b, "\t%s %s\n", name, goType)
}

// scalarGoType resolves the Go type for a non-bitfield field: the array or
// scalar form of its base storage type, unless field_enums substitutes in
// a meta enum type (§4.8).
func scalarGoType(f *schema.DefField, fm schema.ParamMetaField, hasMeta bool, enums map[string]schema.ParamMetaEnum, used map[string]schema.ParamMetaEnum, opts Options) string {
	base := f.FieldDef.Base.Storage().GoType()

	if opts.FieldEnums && hasMeta && fm.EnumName != "" {
		if enum, ok := enums[fm.EnumName]; ok && CanUseEnum(enum) {
			base = enumTypeName(enum)
			used[fm.EnumName] = enum
		}
	}

	if f.FieldDef.Modifier.Kind == schema.ModArray {
		return fmt.Sprintf("[%d]%s", f.FieldDef.Modifier.Length, base)
	}
	return base
}

// docLines assembles doc-comment text from meta wiki/alt-name and the
// paramdef's own display name, description, and min/max (§4.8 "Doc
// comments assemble wiki text, display name, description, min and max
// when present").
func docLines(f *schema.DefField, fm schema.ParamMetaField, hasMeta bool) []string {
	var lines []string
	if hasMeta && fm.Wiki != "" {
		lines = append(lines, fm.Wiki)
	}
	if f.DisplayName != "" {
		lines = append(lines, f.DisplayName)
	}
	if f.Description != "" {
		lines = append(lines, f.Description)
	}
	if f.Minimum != nil || f.Maximum != nil {
		min, max := "?", "?"
		if f.Minimum != nil {
			min = strconv.FormatFloat(*f.Minimum, 'g', -1, 64)
		}
		if f.Maximum != nil {
			max = strconv.FormatFloat(*f.Maximum, 'g', -1, 64)
		}
		lines = append(lines, fmt.Sprintf("Range: [%s, %s]", min, max))
	}
	if len(lines) == 0 {
		lines = append(lines, exportName(f.FieldDef.Name))
	}
	return lines
}
