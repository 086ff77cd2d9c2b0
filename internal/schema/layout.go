package schema

import "github.com/scigolib/paramdex/internal/utils"

func alignUp(x, align int) int {
	if align <= 0 {
		return x
	}
	return (x + align - 1) / align * align
}

// ComputeLayout assigns bit_offset to every field of def and computes the
// struct's total size_bytes, reproducing the original C struct layout
// byte-for-byte (§4.7). It must run exactly once per Paramdef, in field
// declaration order — the algorithm is a single forward pass that only
// looks at the immediately preceding field.
func ComputeLayout(def *Paramdef) error {
	fields := def.Fields.Field
	if len(fields) == 0 {
		def.SizeBytes = 0
		return nil
	}

	var prevOffset, prevSizeBits int
	var prevWasBitfield bool
	var prevStorage StorageType

	for _, f := range fields {
		storage := f.FieldDef.Base.Storage()
		alignBits := storage.AlignBits()
		storageBits := storage.SizeBits()

		var offset, sizeBits int
		isBitfield := f.FieldDef.Modifier.Kind == ModBitfield

		switch {
		case isBitfield:
			width := f.FieldDef.Modifier.Width
			if width > storageBits {
				return utils.InvalidDataf("paramdef layout",
					"field %q: bitfield width %d exceeds storage width %d bits",
					f.FieldDef.Name, width, storageBits)
			}
			if prevWasBitfield && prevStorage == storage &&
				(prevOffset%storageBits)+prevSizeBits+width <= storageBits {
				offset = prevOffset + prevSizeBits
			} else {
				offset = alignUp(prevOffset+prevSizeBits, alignBits)
			}
			sizeBits = width

		case f.FieldDef.Modifier.Kind == ModArray:
			offset = alignUp(prevOffset+prevSizeBits, alignBits)
			sizeBits = storageBits * f.FieldDef.Modifier.Length

		default: // ModNone
			offset = alignUp(prevOffset+prevSizeBits, alignBits)
			sizeBits = storageBits
		}

		bo := offset
		f.BitOffset = &bo

		prevOffset, prevSizeBits, prevWasBitfield, prevStorage = offset, sizeBits, isBitfield, storage
	}

	last := fields[len(fields)-1]
	lastAlign := last.FieldDef.Base.Storage().AlignBits()
	def.SizeBytes = alignUp(prevOffset+prevSizeBits, lastAlign) / 8

	return nil
}
