package codegen

// Options selects which optional emission behaviors Generate turns on (§6
// "Code-gen options").
type Options struct {
	// Docs includes doc comments assembled from meta wiki text, display
	// name, description, and min/max.
	Docs bool
	// FieldEnums substitutes a field's declared Go type with its meta enum
	// type, when the field's meta names one whose base type isn't f32.
	FieldEnums bool
	// NameEnums marks that the caller wants named row-id constants for a
	// PARAM table. Generate does not read it; the constants are produced
	// only by a separate GenerateRowNameConsts call.
	NameEnums bool
	// Reflection emits a field-descriptor table alongside the record type.
	Reflection bool
	// PrivateDummy8 hides Dummy8 padding fields behind an unexported name
	// instead of exporting them like any other field.
	PrivateDummy8 bool
}
