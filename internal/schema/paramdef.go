package schema

import (
	"encoding/xml"
	"fmt"

	"github.com/scigolib/paramdex/internal/utils"
)

// capsBool unmarshals the Paramdef XML dialect's "True"/"False" element text
// (title case, unlike Go's or FromSoftware's own JSON dialect's booleans).
type capsBool bool

func (b *capsBool) UnmarshalText(text []byte) error {
	switch string(text) {
	case "True":
		*b = true
	case "False":
		*b = false
	default:
		return fmt.Errorf("unexpected bool value %q, want True or False", text)
	}
	return nil
}

// DefField is one <Field> element: a parsed C-style declaration plus the
// descriptive metadata the paramdef format keeps alongside it.
type DefField struct {
	FieldDef    DefType  `xml:"Def,attr"`
	DisplayName string   `xml:"DisplayName"`
	Enum        string   `xml:"Enum"`
	Description string   `xml:"Description"`
	EditFlags   string   `xml:"EditFlags"`
	Minimum     *float64 `xml:"Minimum"`
	Maximum     *float64 `xml:"Maximum"`
	Increment   *float32 `xml:"Increment"`
	SortID      *int32   `xml:"SortId"`

	// BitOffset is filled in by ComputeLayout; absent (nil) until then.
	BitOffset *int `xml:"-"`
}

// IsBitfield reports whether this field is a bitfield (as opposed to a
// scalar or array field).
func (f *DefField) IsBitfield() bool { return f.FieldDef.Modifier.Kind == ModBitfield }

// Paramdef is one PARAMDEF XML document: a versioned C struct layout for one
// param type.
type Paramdef struct {
	XMLName       xml.Name `xml:"PARAMDEF"`
	ParamType     string   `xml:"ParamType"`
	DataVersion   uint32   `xml:"DataVersion"`
	BigEndian     capsBool `xml:"BigEndian"`
	Unicode       capsBool `xml:"Unicode"`
	FormatVersion uint32   `xml:"FormatVersion"`
	Fields        struct {
		Field []*DefField `xml:"Field"`
	} `xml:"Fields"`

	// SizeBytes is filled in by ComputeLayout.
	SizeBytes int `xml:"-"`
}

// ParseParamdef parses one PARAMDEF XML document and computes its layout.
func ParseParamdef(data []byte) (*Paramdef, error) {
	var def Paramdef
	if err := xml.Unmarshal(data, &def); err != nil {
		return nil, utils.WrapError("paramdef xml", err)
	}
	if err := ComputeLayout(&def); err != nil {
		return nil, utils.WrapError("paramdef layout", err)
	}
	return &def, nil
}
