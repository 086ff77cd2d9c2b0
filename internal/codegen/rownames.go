package codegen

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/scigolib/paramdex/internal/schema"
)

// GenerateRowNameConsts emits a named integer type and one constant per
// row id in names, for callers that enable the name_enums option (§6
// "name_enums: export named row-id enums").
func GenerateRowNameConsts(pkg, paramType string, names schema.RowNames) (string, error) {
	typeName := exportName(paramType) + "RowID"

	ids := make([]int64, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rawNames := make([]string, len(ids))
	for i, id := range ids {
		rawNames[i] = exportName(names[id])
	}
	deduped := dedupeVariantNames(rawNames)

	var body strings.Builder
	fmt.Fprintf(&body, "package %s\n\n", pkg)
	fmt.Fprintf(&body, "// %s names %s row ids as symbolic Go constants.\n", typeName, paramType)
	fmt.Fprintf(&body, "type %s uint32\n\n", typeName)

	if len(ids) > 0 {
		body.WriteString("const (\n")
		for i, id := range ids {
			fmt.Fprintf(&body, "\t%s%s %s = %d\n", typeName, deduped[i], typeName, id)
		}
		body.WriteString(")\n")
	}

	formatted, err := format.Source([]byte(body.String()))
	if err != nil {
		return "", fmt.Errorf("codegen: formatting row name constants for %q: %w", paramType, err)
	}
	return string(formatted), nil
}
