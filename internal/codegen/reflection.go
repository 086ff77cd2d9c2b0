package codegen

import (
	"fmt"
	"strings"

	"github.com/scigolib/paramdex/internal/schema"
)

// FieldDescriptorRuntimeSource is the shared FieldDescriptor type backing
// every per-paramdef reflection table the Reflection option emits. Callers
// composing several Generate calls into one package should include this
// exactly once.
const FieldDescriptorRuntimeSource = `// FieldDescriptor describes one schema field's name and bit-exact layout,
// for callers that want to walk a record's fields generically instead of
// through its generated accessors.
type FieldDescriptor struct {
	Name      string
	BitOffset int
	Bits      int
	Bitfield  bool
}
`

// writeReflectionTable emits a []FieldDescriptor literal naming every
// schema field of def in declaration order (§6 "reflection: emit
// reflection tables").
func writeReflectionTable(b *strings.Builder, structName string, def *schema.Paramdef) {
	fmt.Fprintf(b, "// %sFields describes every schema field of %s, in declaration order.\n", structName, structName)
	fmt.Fprintf(b, "var %sFields = []FieldDescriptor{\n", structName)
	for _, f := range def.Fields.Field {
		bits := f.FieldDef.Base.Storage().SizeBits()
		if f.FieldDef.Modifier.Kind == schema.ModArray {
			bits *= f.FieldDef.Modifier.Length
		} else if f.FieldDef.Modifier.Kind == schema.ModBitfield {
			bits = f.FieldDef.Modifier.Width
		}
		fmt.Fprintf(b, "\t{Name: %q, BitOffset: %d, Bits: %d, Bitfield: %t},\n",
			f.FieldDef.Name, *f.BitOffset, bits, f.IsBitfield())
	}
	b.WriteString("}\n\n")
}
