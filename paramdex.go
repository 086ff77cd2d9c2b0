// Package paramdex reads FromSoftware regulation archives and decodes their
// embedded PARAM tables against a loaded Paramdex schema bundle: cipher →
// DCX/DCP decompression → BND4 archive → PARAM table → schema-driven row
// decode (§2).
package paramdex

import (
	"math"

	"github.com/scigolib/paramdex/internal/bitio"
	"github.com/scigolib/paramdex/internal/param"
	"github.com/scigolib/paramdex/internal/schema"
	"github.com/scigolib/paramdex/internal/utils"
)

// Paramdex wraps the schema bundle loaded from a Paramdex directory tree
// (Defs/, DefsPatch/<N>/, Meta/, Names/) and adds the decode/row-name
// conveniences SPEC_FULL §C.2/§C.4 name as the point where the schema and
// container streams meet.
type Paramdex struct {
	inner *schema.Paramdex
}

// Load reads every Defs/*.xml, DefsPatch/<N>/*.xml, Meta/*.xml, and
// Names/*.txt file under dir (§4.6). Per-file parse failures are collected
// rather than aborting the whole load; see Errors.
func Load(dir string) (*Paramdex, error) {
	inner, err := schema.LoadParamdex(dir)
	if err != nil {
		return nil, utils.WrapError("paramdex: load", err)
	}
	return &Paramdex{inner: inner}, nil
}

// Errors lists every per-file failure collected while loading.
func (px *Paramdex) Errors() []error { return px.inner.Errors }

// Def returns the patch of name active at version v: the entry with the
// greatest key <= v, or false if name is unknown (§4.6).
func (px *Paramdex) Def(name string, v int) (*schema.Paramdef, bool) { return px.inner.Def(name, v) }

// LatestDef returns the highest-versioned patch of name.
func (px *Paramdex) LatestDef(name string) (*schema.Paramdef, bool) { return px.inner.LatestDef(name) }

// BaseDef returns the version-0 patch of name.
func (px *Paramdex) BaseDef(name string) (*schema.Paramdef, bool) { return px.inner.BaseDef(name) }

// Defs returns every known paramdef's patch active at version v.
func (px *Paramdex) Defs(v int) map[string]*schema.Paramdef { return px.inner.Defs(v) }

// Meta returns the PARAMMETA loaded for name, if any.
func (px *Paramdex) Meta(name string) (*schema.ParamMeta, bool) { return px.inner.Meta(name) }

// RowIDNames returns the Names/<name>.txt lookup table for name, if any.
func (px *Paramdex) RowIDNames(name string) (schema.RowNames, bool) { return px.inner.RowIDNames(name) }

// RowName merges a row's embedded name (preferred, when non-empty) with the
// Names/*.txt lookup for paramType, per SPEC_FULL §C.4.
func (px *Paramdex) RowName(paramType string, id uint32, embedded string) (string, bool) {
	if embedded != "" {
		return embedded, true
	}
	names, ok := px.RowIDNames(paramType)
	if !ok {
		return "", false
	}
	name, ok := names[int64(id)]
	return name, ok
}

// DecodedField is one schema field materialized from a row's raw bytes.
// Value holds a Go scalar (uint8/int8/.../float32/string), a slice of
// scalars for array fields, or an int64 for bitfield fields (§4.8's
// read/shift/mask rule applied to decode rather than to accessor codegen).
type DecodedField struct {
	Name  string
	Value any
	// EnumLabel is the meta enum's declared option name for Value, when the
	// field's meta names one and the raw value matches a declared option
	// (SPEC_FULL §C.3). Empty otherwise.
	EnumLabel string
}

// DecodedRow is one PARAM row decoded against a Paramdef layout.
type DecodedRow struct {
	ID     uint32
	Name   string
	Fields []DecodedField
}

// DecodedTable is a PARAM table with every row decoded against a Paramdef.
type DecodedTable struct {
	ParamType string
	Rows      []DecodedRow
}

// Decode materializes every row of table against the patch of paramType
// active at version, field by field, bridging the schema and container
// streams (SPEC_FULL §C.2). When a PARAMMETA is loaded for paramType, its
// field annotations drive enum label lookup; otherwise no labels are set.
func (px *Paramdex) Decode(paramType string, version int, table *param.Table) (*DecodedTable, error) {
	def, ok := px.Def(paramType, version)
	if !ok {
		return nil, utils.InvalidDataf("paramdex: decode", "no paramdef %q at version %d", paramType, version)
	}
	meta, _ := px.Meta(paramType)

	out := &DecodedTable{ParamType: paramType, Rows: make([]DecodedRow, len(table.Rows))}
	for i, row := range table.Rows {
		decoded, err := decodeRow(def, meta, row)
		if err != nil {
			return nil, utils.WrapError("paramdex: decode row", err)
		}
		out.Rows[i] = decoded
	}
	return out, nil
}

func decodeRow(def *schema.Paramdef, meta *schema.ParamMeta, row param.Row) (DecodedRow, error) {
	var fieldMeta map[string]schema.ParamMetaField
	var enums map[string]schema.ParamMetaEnum
	if meta != nil {
		fieldMeta = meta.FieldsByName()
		enums = meta.EnumsByName()
	}

	order := bitio.LittleEndian
	if bool(def.BigEndian) {
		order = bitio.BigEndian
	}

	fields := make([]DecodedField, len(def.Fields.Field))
	for i, f := range def.Fields.Field {
		value, err := decodeField(row.Data, f, order)
		if err != nil {
			return DecodedRow{}, utils.WrapError("field "+f.FieldDef.Name, err)
		}
		df := DecodedField{Name: f.FieldDef.Name, Value: value}
		if raw, ok := asInt64(value); ok && fieldMeta != nil {
			if fm, ok := fieldMeta[f.FieldDef.Name]; ok && fm.EnumName != "" {
				if enum, ok := enums[fm.EnumName]; ok {
					if label, ok := enum.OptionName(raw); ok {
						df.EnumLabel = label
					}
				}
			}
		}
		fields[i] = df
	}
	return DecodedRow{ID: row.ID, Name: row.Name, Fields: fields}, nil
}

// decodeField reads one schema field's value out of data per its computed
// layout (§4.7/§4.8): non-bitfield fields read their natural storage type
// (or a Length-element array of it), bitfield fields read their containing
// storage word and apply read_offset/shift/mask.
func decodeField(data []byte, f *schema.DefField, order bitio.Order) (any, error) {
	if f.IsBitfield() {
		return decodeBitfield(data, f, order)
	}

	byteOffset := *f.BitOffset / 8
	c := bitio.NewCursor(data)
	if err := c.SeekAbs(byteOffset); err != nil {
		return nil, err
	}

	switch f.FieldDef.Base {
	case schema.BaseFixstr:
		return decodeFixedString(c, f, false, order)
	case schema.BaseFixstrW:
		return decodeFixedString(c, f, true, order)
	}

	if f.FieldDef.Modifier.Kind == schema.ModArray {
		n := f.FieldDef.Modifier.Length
		out := make([]any, n)
		for i := range n {
			v, err := readScalar(c, f.FieldDef.Base, order)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return readScalar(c, f.FieldDef.Base, order)
}

func readScalar(c *bitio.Cursor, base schema.DefBaseType, order bitio.Order) (any, error) {
	switch base {
	case schema.BaseDummy8, schema.BaseU8:
		return c.ReadU8()
	case schema.BaseS8:
		return c.ReadI8()
	case schema.BaseU16:
		return c.ReadU16(order)
	case schema.BaseS16:
		return c.ReadI16(order)
	case schema.BaseU32:
		return c.ReadU32(order)
	case schema.BaseS32:
		return c.ReadI32(order)
	case schema.BaseF32:
		bits, err := c.ReadU32(order)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(bits), nil
	default:
		return nil, utils.InvalidDataf("decode field", "unknown base type %d", base)
	}
}

// decodeFixedString reads a Length-character fixed-width string field,
// trimming at the first NUL the way the original C struct's fixed char
// array is conventionally terminated.
func decodeFixedString(c *bitio.Cursor, f *schema.DefField, wide bool, order bitio.Order) (any, error) {
	n := f.FieldDef.Modifier.Length
	if n == 0 {
		n = 1
	}
	if wide {
		raw, err := c.ReadFixed(n * 2)
		if err != nil {
			return nil, err
		}
		return utils.TrimWideCString(raw, order == bitio.BigEndian), nil
	}
	raw, err := c.ReadFixed(n)
	if err != nil {
		return nil, err
	}
	return utils.TrimCString(raw), nil
}

// asInt64 widens any integer value decodeField/decodeBitfield can produce
// to int64 for enum-option comparison (SPEC_FULL §C.3); non-integer values
// (float32, string, arrays) report false since no enum can apply to them.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case uint8:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case int16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}

func decodeBitfield(data []byte, f *schema.DefField, order bitio.Order) (any, error) {
	storageBytes := f.FieldDef.Base.Storage().SizeBits() / 8
	byteOffset := (*f.BitOffset / 8 / storageBytes) * storageBytes
	shift := *f.BitOffset - byteOffset*8
	width := f.FieldDef.Modifier.Width
	mask := (uint64(1) << uint(width)) - 1

	c := bitio.NewCursor(data)
	if err := c.SeekAbs(byteOffset); err != nil {
		return nil, err
	}

	var word uint64
	switch storageBytes {
	case 1:
		v, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		word = uint64(v)
	case 2:
		v, err := c.ReadU16(order)
		if err != nil {
			return nil, err
		}
		word = uint64(v)
	default:
		v, err := c.ReadU32(order)
		if err != nil {
			return nil, err
		}
		word = uint64(v)
	}
	return int64((word >> uint(shift)) & mask), nil
}
