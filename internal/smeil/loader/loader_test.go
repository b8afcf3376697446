package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/dekarrin/smeilc/internal/smeil/lexer"
	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_LoadProgram_SingleFileEmptyNetwork(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "top.smeil", "network top() {\n}\n")

	l := New(Project{}, "")
	net, err := l.LoadProgram(path, "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "top", net.Name)
}

func Test_LoadProgram_DefaultTopPicksSoleNetwork(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.smeil", "network onlyone() {\n}\n")

	l := New(Project{}, "")
	net, err := l.LoadProgram(path, "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "onlyone", net.Name)
}

func Test_LoadProgram_AmbiguousTopWithoutNameIsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "two.smeil", "network a() {\n}\nnetwork b() {\n}\n")

	l := New(Project{}, "")
	_, err := l.LoadProgram(path, "", nil)
	assert.Error(t, err)
}

func Test_LoadProgram_NamedTopAmongMultiple(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "two.smeil", "network a() {\n}\nnetwork b() {\n}\n")

	l := New(Project{}, "")
	net, err := l.LoadProgram(path, "b", nil)
	assert.NoError(t, err)
	assert.Equal(t, "b", net.Name)
}

func Test_LoadProgram_FullImportWiresCrossModuleInstance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub.smeil", "proc worker() {\n}\n")
	mainPath := writeFile(t, dir, "main.smeil",
		"import sub as s;\nnetwork top() {\n  instance w of s.worker();\n}\n")

	l := New(Project{}, "")
	net, err := l.LoadProgram(mainPath, "", nil)
	assert.NoError(t, err)
	assert.Len(t, net.Processes, 1)
	assert.Equal(t, "w", net.Processes[0].Name)
}

func Test_LoadProgram_LimitedImportBindsBareEntityName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub.smeil", "proc worker() {\n}\n")
	mainPath := writeFile(t, dir, "main.smeil",
		"from sub import worker;\nnetwork top() {\n  instance w of worker();\n}\n")

	l := New(Project{}, "")
	net, err := l.LoadProgram(mainPath, "", nil)
	assert.NoError(t, err)
	assert.Len(t, net.Processes, 1)
}

func Test_LoadProgram_ImportCycleIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.smeil", "import b;\nnetwork na() {\n}\n")
	bPath := writeFile(t, dir, "b.smeil", "import a;\nnetwork nb() {\n}\n")

	l := New(Project{}, "")
	_, err := l.LoadProgram(bPath, "", nil)
	assert.Error(t, err)
}

func Test_LoadProgram_MissingImportIsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.smeil", "import nope;\nnetwork top() {\n}\n")

	l := New(Project{}, "")
	_, err := l.LoadProgram(path, "", nil)
	assert.Error(t, err)
}

func Test_ParseCLIArgs_Precedence(t *testing.T) {
	vals := ParseCLIArgs([]string{"true", "42", "3.5", "hello"})
	assert.Equal(t, ir.ValBool, vals[0].Kind)
	assert.Equal(t, true, vals[0].AsBool())
	assert.Equal(t, ir.ValInt, vals[1].Kind)
	assert.Equal(t, int64(42), vals[1].AsInt())
	assert.Equal(t, ir.ValFloat, vals[2].Kind)
	assert.Equal(t, 3.5, vals[2].AsFloat())
	assert.Equal(t, ir.ValString, vals[3].Kind)
	assert.Equal(t, "hello", vals[3].S)
}

func Test_ParseCache_StoreThenLookupRoundTrips(t *testing.T) {
	pc := &parseCache{entries: make(map[string]cacheEntry)}
	src := []byte("network top() {}")

	_, ok := pc.lookup("x.smeil", src)
	assert.False(t, ok)

	toks, err := lexer.Tokenize("x.smeil", string(src))
	assert.NoError(t, err)
	pc.store("x.smeil", src, toks)

	got, ok := pc.lookup("x.smeil", src)
	assert.True(t, ok)
	assert.Equal(t, len(toks), len(got))

	_, ok = pc.lookup("x.smeil", []byte("network top() { /* changed */ }"))
	assert.False(t, ok)
}

func Test_ResolveImportPath_FallsBackToSearchPath(t *testing.T) {
	refDir := t.TempDir()
	searchDir := t.TempDir()
	writeFile(t, searchDir, "helper.smeil", "network h() {}\n")

	l := New(Project{SearchPaths: []string{searchDir}}, "")
	ref := filepath.Join(refDir, "main.smeil")

	got, err := l.resolveImportPath(ref, []string{"helper"})
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(searchDir, "helper.smeil"), got)
}

func Test_ModuleResolver_ResolvesOwnAndImportedEntities(t *testing.T) {
	own := &ast.Module{Procs: []*ast.Process{{Name: "local"}}}
	other := &ast.Module{Networks: []*ast.Network{{Name: "remote"}}}

	l := &Loader{records: map[string]*moduleRecord{
		"other.smeil": {path: "other.smeil", mod: other},
	}}
	rec := &moduleRecord{path: "own.smeil", mod: own, bindings: map[string]importBinding{
		"o": {module: true, path: "other.smeil"},
	}}
	r := &moduleResolver{loader: l, rec: rec}

	p, n, ok := r.ResolveEntity([]string{"local"})
	assert.True(t, ok)
	assert.NotNil(t, p)
	assert.Nil(t, n)

	p, n, ok = r.ResolveEntity([]string{"o", "remote"})
	assert.True(t, ok)
	assert.Nil(t, p)
	assert.NotNil(t, n)

	_, _, ok = r.ResolveEntity([]string{"nope"})
	assert.False(t, ok)
}
