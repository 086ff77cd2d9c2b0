package schema

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/scigolib/paramdex/internal/utils"
)

// versionedDef is the version-ordered set of patches for one paramdef name.
// versions is kept sorted ascending so def() can binary-search the greatest
// key <= V; version 0 (the base def) is always present once loaded.
type versionedDef struct {
	versions []int
	byVer    map[int]*Paramdef
}

func (v *versionedDef) at(version int) (*Paramdef, bool) {
	// Greatest key <= version.
	i := sort.SearchInts(v.versions, version+1) - 1
	if i < 0 {
		return nil, false
	}
	return v.byVer[v.versions[i]], true
}

func (v *versionedDef) put(version int, def *Paramdef) {
	if v.byVer == nil {
		v.byVer = make(map[int]*Paramdef)
	}
	if _, exists := v.byVer[version]; !exists {
		v.versions = append(v.versions, version)
		sort.Ints(v.versions)
	}
	v.byVer[version] = def
}

// Paramdex is a loaded schema directory: paramdefs (base plus version
// patches), meta annotations, and row-name files, all indexed by stripped
// file stem (§4.6).
type Paramdex struct {
	defs  map[string]*versionedDef
	metas map[string]*ParamMeta
	names map[string]RowNames

	// Errors collected while loading individual files; loading continues
	// past a per-file failure so one bad fixture doesn't blank the index.
	Errors []error
}

func stemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// LoadParamdex loads a full paramdex directory tree rooted at dir, per the
// layout in §6: Defs/*.xml, DefsPatch/<decimal>/*.xml, Meta/*.xml,
// Names/*.txt.
func LoadParamdex(dir string) (*Paramdex, error) {
	px := &Paramdex{
		defs:  make(map[string]*versionedDef),
		metas: make(map[string]*ParamMeta),
		names: make(map[string]RowNames),
	}

	if err := px.loadDefs(filepath.Join(dir, "Defs"), 0); err != nil {
		return nil, err
	}
	if err := px.loadPatches(filepath.Join(dir, "DefsPatch")); err != nil {
		return nil, err
	}
	if err := px.loadMetas(filepath.Join(dir, "Meta")); err != nil {
		return nil, err
	}
	if err := px.loadNames(filepath.Join(dir, "Names")); err != nil {
		return nil, err
	}

	return px, nil
}

func (px *Paramdex) loadDefs(dir string, version int) error {
	files, err := listFiles(dir, ".xml")
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		def, err := ParseParamdef(data)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		name := stemName(path)
		vd, ok := px.defs[name]
		if !ok {
			vd = &versionedDef{}
			px.defs[name] = vd
		}
		vd.put(version, def)
	}
	return nil
}

func (px *Paramdex) loadPatches(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		version, err := strconv.Atoi(e.Name())
		if err != nil {
			px.Errors = append(px.Errors, utils.InvalidDataf("paramdex DefsPatch", "non-integer patch directory name %q", e.Name()))
			continue
		}
		if err := px.loadDefs(filepath.Join(dir, e.Name()), version); err != nil {
			return err
		}
	}
	return nil
}

func (px *Paramdex) loadMetas(dir string) error {
	files, err := listFiles(dir, ".xml")
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		meta, err := ParseParamMeta(data)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		px.metas[stemName(path)] = meta
	}
	return nil
}

func (px *Paramdex) loadNames(dir string) error {
	files, err := listFiles(dir, ".txt")
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		names, err := ParseRowNames(data)
		if err != nil {
			px.Errors = append(px.Errors, utils.WrapError(path, err))
			continue
		}
		px.names[stemName(path)] = names
	}
	return nil
}

// Def returns the patch of paramdef name with the greatest version <= v, or
// ok == false if name is unknown.
func (px *Paramdex) Def(name string, v int) (*Paramdef, bool) {
	vd, ok := px.defs[name]
	if !ok {
		return nil, false
	}
	return vd.at(v)
}

// LatestDef is Def(name, math.MaxInt).
func (px *Paramdex) LatestDef(name string) (*Paramdef, bool) {
	return px.Def(name, math.MaxInt)
}

// BaseDef is Def(name, 0).
func (px *Paramdex) BaseDef(name string) (*Paramdef, bool) {
	return px.Def(name, 0)
}

// Defs returns Def(_, v) for every known paramdef name.
func (px *Paramdex) Defs(v int) map[string]*Paramdef {
	out := make(map[string]*Paramdef, len(px.defs))
	for name, vd := range px.defs {
		if def, ok := vd.at(v); ok {
			out[name] = def
		}
	}
	return out
}

// Meta returns the PARAMMETA for paramdef name, if one was loaded.
func (px *Paramdex) Meta(name string) (*ParamMeta, bool) {
	m, ok := px.metas[name]
	return m, ok
}

// RowIDNames returns the row-id-to-name map for paramdef name, if one was
// loaded.
func (px *Paramdex) RowIDNames(name string) (RowNames, bool) {
	n, ok := px.names[name]
	return n, ok
}
