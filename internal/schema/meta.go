package schema

import (
	"encoding/xml"

	"github.com/scigolib/paramdex/internal/utils"
)

// ParamEnumOption is one named value of a meta enum.
type ParamEnumOption struct {
	Value int64  `xml:"Value,attr"`
	Name  string `xml:"Name,attr"`
}

// ParamMetaEnum is a named set of enumerated values a field can reference by
// name via ParamMetaField.EnumName.
type ParamMetaEnum struct {
	Name     string            `xml:"Name,attr"`
	BaseType DefBaseType       `xml:"type,attr"`
	Options  []ParamEnumOption `xml:"Option"`
}

// ParamMetaField carries the human-facing annotations for one field of the
// matching Paramdef, keyed by field name via ParamMeta.FieldsByName.
type ParamMetaField struct {
	Name     string `xml:"Name,attr"`
	AltName  string `xml:"AltName,attr"`
	Wiki     string `xml:"Wiki,attr"`
	EnumName string `xml:"EnumName,attr"`

	// IsBoolRaw is non-nil whenever the @IsBool attribute is present, no
	// matter its text — the dialect treats presence alone as true (§6).
	IsBoolRaw *string `xml:"IsBool,attr"`
}

// IsBool reports whether the field was annotated @IsBool, ignoring its
// attribute value.
func (f ParamMetaField) IsBool() bool { return f.IsBoolRaw != nil }

// ParamMeta is one PARAMMETA XML document: enum declarations and per-field
// display annotations for a param type.
type ParamMeta struct {
	XMLName    xml.Name `xml:"PARAMMETA"`
	XMLVersion uint64   `xml:"XmlVersion,attr"`
	Enums      struct {
		Enum []ParamMetaEnum `xml:"Enum"`
	} `xml:"Enums"`
	Field []ParamMetaField `xml:"Field"`
}

// FieldsByName indexes Field by its Name attribute, for O(1) lookup during
// code generation.
func (m *ParamMeta) FieldsByName() map[string]ParamMetaField {
	out := make(map[string]ParamMetaField, len(m.Field))
	for _, f := range m.Field {
		out[f.Name] = f
	}
	return out
}

// EnumsByName indexes Enums.Enum by its Name attribute.
func (m *ParamMeta) EnumsByName() map[string]ParamMetaEnum {
	out := make(map[string]ParamMetaEnum, len(m.Enums.Enum))
	for _, e := range m.Enums.Enum {
		out[e.Name] = e
	}
	return out
}

// OptionName returns the declared option name for value, or "" and false if
// no option in the enum declares that value. Used by Paramdex.Decode to
// label an enum-valued field and by codegen.EnumVariantName.
func (e ParamMetaEnum) OptionName(value int64) (string, bool) {
	for _, opt := range e.Options {
		if opt.Value == value {
			return opt.Name, true
		}
	}
	return "", false
}

// ParseParamMeta parses one PARAMMETA XML document.
func ParseParamMeta(data []byte) (*ParamMeta, error) {
	var meta ParamMeta
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, utils.WrapError("param meta xml", err)
	}
	return &meta, nil
}
