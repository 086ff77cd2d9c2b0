package codegen

import (
	"fmt"
	"strings"

	"github.com/scigolib/paramdex/internal/schema"
)

// uintGoType returns the unsigned Go integer type of the given bit width.
// Bitfield accessors always expose the raw unsigned storage word — sign
// doesn't apply to a bit-packed value the way it does to a scalar field —
// mirroring how the source tool's bitfield getters never sign-extend.
func uintGoType(bits int) string {
	switch bits {
	case 8:
		return "uint8"
	case 16:
		return "uint16"
	default:
		return "uint32"
	}
}

// writeBitfieldAccessors emits the get/set/update trio for one logical
// bitfield field backed by the private byte array runName, which starts at
// struct byte offset runStart (§4.8: "accessor methods get/set/update are
// emitted per logical bitfield").
func writeBitfieldAccessors(b *strings.Builder, structName, runName string, runStart int, f *schema.DefField, bigEndian bool, opts Options) {
	storageBits := f.FieldDef.Base.Storage().SizeBits()
	width := f.FieldDef.Modifier.Width
	readOffset := readOffsetBytes(f)
	rel := readOffset - runStart
	shift := *f.BitOffset - readOffset*8
	mask := ((uint64(1) << uint(width)) - 1) << uint(shift)

	name := exportName(f.FieldDef.Name)
	goType := uintGoType(storageBits)

	if opts.Docs {
		for _, line := range docLines(f, schema.ParamMetaField{}, false) {
			fmt.Fprintf(b, "\t// %s\n", line)
		}
	}

	order := "binary.LittleEndian"
	if bigEndian {
		order = "binary.BigEndian"
	}

	switch storageBits {
	case 8:
		fmt.Fprintf(b, "func (r *%s) %s() %s {\n\treturn %s((r.%s[%d] & 0x%X) >> %d)\n}\n\n",
			structName, name, goType, goType, runName, rel, mask, shift)
		fmt.Fprintf(b, "func (r *%s) Set%s(v %s) {\n\tr.%s[%d] = (r.%s[%d] &^ 0x%X) | ((v << %d) & 0x%X)\n}\n\n",
			structName, name, goType, runName, rel, runName, rel, mask, shift, mask)
	case 16:
		fmt.Fprintf(b, "func (r *%s) %s() %s {\n\tv := %s.Uint16(r.%s[%d:])\n\treturn %s((v & 0x%X) >> %d)\n}\n\n",
			structName, name, goType, order, runName, rel, goType, mask, shift)
		fmt.Fprintf(b, "func (r *%s) Set%s(v %s) {\n\tcur := %s.Uint16(r.%s[%d:])\n\tcur = (cur &^ 0x%X) | ((v << %d) & 0x%X)\n\t%s.PutUint16(r.%s[%d:], cur)\n}\n\n",
			structName, name, goType, order, runName, rel, mask, shift, mask, order, runName, rel)
	default: // 32
		fmt.Fprintf(b, "func (r *%s) %s() %s {\n\tv := %s.Uint32(r.%s[%d:])\n\treturn %s((v & 0x%X) >> %d)\n}\n\n",
			structName, name, goType, order, runName, rel, goType, mask, shift)
		fmt.Fprintf(b, "func (r *%s) Set%s(v %s) {\n\tcur := %s.Uint32(r.%s[%d:])\n\tcur = (cur &^ 0x%X) | ((v << %d) & 0x%X)\n\t%s.PutUint32(r.%s[%d:], cur)\n}\n\n",
			structName, name, goType, order, runName, rel, mask, shift, mask, order, runName, rel)
	}

	fmt.Fprintf(b, "func (r *%s) Update%s(fn func(%s) %s) {\n\tr.Set%s(fn(r.%s()))\n}\n\n",
		structName, name, goType, goType, name, name)
}
