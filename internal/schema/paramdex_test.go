package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeParamdefFixture(t *testing.T, dir, name, paramType string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	doc := `<?xml version="1.0" encoding="utf-8"?>
<PARAMDEF>
  <ParamType>` + paramType + `</ParamType>
  <DataVersion>1</DataVersion>
  <BigEndian>False</BigEndian>
  <Unicode>False</Unicode>
  <FormatVersion>100</FormatVersion>
  <Fields>
    <Field Def="u32 value"><DisplayName>Value</DisplayName></Field>
  </Fields>
</PARAMDEF>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".xml"), []byte(doc), 0o644))
}

// TestLoadParamdex_PatchResolution is testable property 6: for paramdef P
// with versions {0, 5, 10}, def(P, 7) returns the version-5 entry,
// def(P, 10) the version-10, def(P, 0) the base.
func TestLoadParamdex_PatchResolution(t *testing.T) {
	root := t.TempDir()
	writeParamdefFixture(t, filepath.Join(root, "Defs"), "TEST_PARAM_ST", "TEST_PARAM_ST_v0")
	writeParamdefFixture(t, filepath.Join(root, "DefsPatch", "5"), "TEST_PARAM_ST", "TEST_PARAM_ST_v5")
	writeParamdefFixture(t, filepath.Join(root, "DefsPatch", "10"), "TEST_PARAM_ST", "TEST_PARAM_ST_v10")

	px, err := LoadParamdex(root)
	require.NoError(t, err)
	require.Empty(t, px.Errors)

	def7, ok := px.Def("TEST_PARAM_ST", 7)
	require.True(t, ok)
	require.Equal(t, "TEST_PARAM_ST_v5", def7.ParamType)

	def10, ok := px.Def("TEST_PARAM_ST", 10)
	require.True(t, ok)
	require.Equal(t, "TEST_PARAM_ST_v10", def10.ParamType)

	def0, ok := px.Def("TEST_PARAM_ST", 0)
	require.True(t, ok)
	require.Equal(t, "TEST_PARAM_ST_v0", def0.ParamType)

	base, ok := px.BaseDef("TEST_PARAM_ST")
	require.True(t, ok)
	require.Equal(t, def0, base)

	latest, ok := px.LatestDef("TEST_PARAM_ST")
	require.True(t, ok)
	require.Equal(t, "TEST_PARAM_ST_v10", latest.ParamType)

	_, ok = px.Def("NO_SUCH_PARAM", 0)
	require.False(t, ok)
}

func TestLoadParamdex_MetaAndNames(t *testing.T) {
	root := t.TempDir()
	writeParamdefFixture(t, filepath.Join(root, "Defs"), "TEST_PARAM_ST", "TEST_PARAM_ST")

	metaDir := filepath.Join(root, "Meta")
	require.NoError(t, os.MkdirAll(metaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(metaDir, "TEST_PARAM_ST.xml"),
		[]byte(`<PARAMMETA XmlVersion="1"><Field Name="value" AltName="Value"/></PARAMMETA>`), 0o644))

	namesDir := filepath.Join(root, "Names")
	require.NoError(t, os.MkdirAll(namesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(namesDir, "TEST_PARAM_ST.txt"),
		[]byte("1 First\n2 Second\n"), 0o644))

	px, err := LoadParamdex(root)
	require.NoError(t, err)
	require.Empty(t, px.Errors)

	meta, ok := px.Meta("TEST_PARAM_ST")
	require.True(t, ok)
	require.Equal(t, "Value", meta.FieldsByName()["value"].AltName)

	names, ok := px.RowIDNames("TEST_PARAM_ST")
	require.True(t, ok)
	require.Equal(t, "First", names[1])
	require.Equal(t, "Second", names[2])
}

func TestLoadParamdex_MissingDirectoriesAreNotErrors(t *testing.T) {
	root := t.TempDir()
	px, err := LoadParamdex(root)
	require.NoError(t, err)
	require.Empty(t, px.Errors)
	require.Empty(t, px.Defs(0))
}

func TestLoadParamdex_BadXMLCollectedNotFatal(t *testing.T) {
	root := t.TempDir()
	defsDir := filepath.Join(root, "Defs")
	require.NoError(t, os.MkdirAll(defsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "BROKEN.xml"), []byte("not xml at all <<<"), 0o644))

	px, err := LoadParamdex(root)
	require.NoError(t, err)
	require.Len(t, px.Errors, 1)
}
