package codegen

import "github.com/scigolib/paramdex/internal/schema"

// emitItem is either a single non-bitfield schema field or a run of
// consecutive bitfield schema fields, in original declaration order —
// the unit the struct emitter walks over (§4.8 "a run of consecutive
// bitfield schema fields is replaced by a single private byte array").
type emitItem struct {
	field *schema.DefField   // set when this item is a single scalar/array field
	run   []*schema.DefField // set when this item is a bitfield run
}

// groupFields partitions def's fields into emitItems, merging consecutive
// bitfields into runs.
func groupFields(fields []*schema.DefField) []emitItem {
	var items []emitItem
	i := 0
	for i < len(fields) {
		f := fields[i]
		if !f.IsBitfield() {
			items = append(items, emitItem{field: f})
			i++
			continue
		}
		j := i
		for j < len(fields) && fields[j].IsBitfield() {
			j++
		}
		run := make([]*schema.DefField, j-i)
		copy(run, fields[i:j])
		items = append(items, emitItem{run: run})
		i = j
	}
	return items
}

// readOffsetBytes is the byte offset of the storage word containing a
// bitfield at bitOffset: bit_offset/8 aligned down to the storage type's
// byte width (§4.7, §4.8 "read_offset = bit_offset / 8 aligned down to the
// storage-type width").
func readOffsetBytes(f *schema.DefField) int {
	storageBytes := f.FieldDef.Base.Storage().SizeBits() / 8
	byteOffset := *f.BitOffset / 8
	return (byteOffset / storageBytes) * storageBytes
}

// runSpan returns the byte range [start, end) spanned by a bitfield run's
// storage words, used to size the private byte array that replaces it.
func runSpan(run []*schema.DefField) (start, end int) {
	start = readOffsetBytes(run[0])
	end = start
	for _, f := range run {
		ro := readOffsetBytes(f)
		storageBytes := f.FieldDef.Base.Storage().SizeBits() / 8
		if ro+storageBytes > end {
			end = ro + storageBytes
		}
	}
	return start, end
}
