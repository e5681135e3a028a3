// Package introspect builds an index of the types and methods declared by the Go packages
// on a classpath, without compiling or running any of them. It is used to find out which
// API a particular version of a library exposes.
package introspect

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrTypeNotFound is returned by LookupType when no package on the classpath declares
// the requested type.
var ErrTypeNotFound = errors.New("type not found")

// ErrReleased is returned by a Scope that has been released.
var ErrReleased = errors.New("introspection scope has been released")

// Logger is satisfied by framework.Logger and *log.Logger.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(string, ...interface{}) {}

// Scope is an index over one classpath. Types are identified by their qualified name,
// "<package name>.<type name>". When several classpath entries declare the same qualified
// name, the first entry wins and the others are ignored.
type Scope struct {
	types map[string]*Type
}

// Type is a named type declared on the classpath, or a predeclared type.
type Type struct {
	Package  string
	Name     string
	Builtin  bool
	methods  map[string][]Method
	embedded []string
	entry    int
	scope    *Scope
}

// Method is a method declared on a Type. Params holds the rendered parameter types,
// qualified the same way as type names.
type Method struct {
	Name   string
	Params []string
}

// Load parses every non-test Go source file reachable from the classpath entries.
// Entries that do not exist are skipped, as are files that cannot be parsed.
func Load(classpath []string, logger Logger) (*Scope, error) {
	if logger == nil {
		logger = nullLogger{}
	}
	s := &Scope{types: make(map[string]*Type)}
	fset := token.NewFileSet()
	for index, entry := range classpath {
		info, err := os.Stat(entry)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Printf("Classpath entry %s does not exist, skipping", entry)
				continue
			}
			return nil, fmt.Errorf("could not read classpath entry %s: %w", entry, err)
		}
		if !info.IsDir() {
			if isSourceFile(entry) {
				s.parseFile(fset, entry, index, logger)
			}
			continue
		}
		err = filepath.WalkDir(entry, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != entry && (d.Name() == "testdata" || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if isSourceFile(path) {
				s.parseFile(fset, path, index, logger)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("could not read classpath entry %s: %w", entry, err)
		}
	}
	return s, nil
}

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
}

func (s *Scope) parseFile(fset *token.FileSet, path string, entry int, logger Logger) {
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		logger.Printf("Could not parse %s, skipping: %s", path, err)
		return
	}
	q := qualifier{pkg: file.Name.Name, imports: importedPackages(file)}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				t := s.declareType(q.pkg, ts.Name.Name, entry)
				if t == nil {
					continue
				}
				if st, ok := ts.Type.(*ast.StructType); ok && ts.Assign == token.NoPos {
					t.embedded = append(t.embedded, q.embeddedFields(st)...)
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			recv := receiverTypeName(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			t := s.declareType(q.pkg, recv, entry)
			if t == nil {
				continue
			}
			m := Method{Name: d.Name.Name, Params: q.paramTypes(d.Type.Params)}
			t.methods[m.Name] = append(t.methods[m.Name], m)
		}
	}
}

// declareType returns the index entry for a type, creating it if necessary. It returns nil
// if the type already belongs to a different classpath entry.
func (s *Scope) declareType(pkg, name string, entry int) *Type {
	qualified := pkg + "." + name
	t := s.types[qualified]
	if t == nil {
		t = &Type{Package: pkg, Name: name, methods: make(map[string][]Method), entry: entry, scope: s}
		s.types[qualified] = t
	}
	if t.entry != entry {
		return nil
	}
	return t
}

func receiverTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(e.X)
	case *ast.ParenExpr:
		return receiverTypeName(e.X)
	case *ast.IndexExpr:
		return receiverTypeName(e.X)
	case *ast.IndexListExpr:
		return receiverTypeName(e.X)
	case *ast.Ident:
		return e.Name
	}
	return ""
}

// importedPackages maps the name each import is referred to by in a file to the name of the
// imported package, which is assumed to be the last element of its path.
func importedPackages(file *ast.File) map[string]string {
	ret := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		pkg := packageNameFromPath(path)
		local := pkg
		if imp.Name != nil {
			local = imp.Name.Name
		}
		if local == "_" || local == "." {
			continue
		}
		ret[local] = pkg
	}
	return ret
}

func packageNameFromPath(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// qualifier renders type expressions as they appear in one source file.
type qualifier struct {
	pkg     string
	imports map[string]string
}

func (q qualifier) paramTypes(fields *ast.FieldList) []string {
	var ret []string
	if fields == nil {
		return ret
	}
	for _, f := range fields.List {
		rendered := q.render(f.Type)
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			ret = append(ret, rendered)
		}
	}
	return ret
}

// embeddedFields returns the qualified names of the types embedded in a struct.
func (q qualifier) embeddedFields(st *ast.StructType) []string {
	var ret []string
	for _, f := range st.Fields.List {
		if len(f.Names) != 0 {
			continue
		}
		expr := embeddedTypeName(f.Type)
		if name := q.render(expr); !isPredeclared(name) {
			ret = append(ret, name)
		}
	}
	return ret
}

func embeddedTypeName(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return embeddedTypeName(e.X)
	case *ast.IndexExpr:
		return embeddedTypeName(e.X)
	case *ast.IndexListExpr:
		return embeddedTypeName(e.X)
	}
	return expr
}

// render prefixes identifiers that refer to types of the declaring package with that
// package's name, and rewrites references to imported packages to use the package name
// rather than the name of the import in this file.
func (q qualifier) render(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if isPredeclared(e.Name) {
			return e.Name
		}
		return q.pkg + "." + e.Name
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if pkg, ok := q.imports[x.Name]; ok {
				return pkg + "." + e.Sel.Name
			}
		}
	case *ast.StarExpr:
		return "*" + q.render(e.X)
	case *ast.Ellipsis:
		return "..." + q.render(e.Elt)
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + q.render(e.Elt)
		}
		return "[" + types.ExprString(e.Len) + "]" + q.render(e.Elt)
	case *ast.MapType:
		return "map[" + q.render(e.Key) + "]" + q.render(e.Value)
	case *ast.ParenExpr:
		return q.render(e.X)
	}
	return types.ExprString(expr)
}

func isPredeclared(name string) bool {
	return types.Universe.Lookup(name) != nil
}

// LookupType resolves a qualified type name, or a predeclared type name such as "bool".
func (s *Scope) LookupType(name string) (*Type, error) {
	if s.types == nil {
		return nil, ErrReleased
	}
	if isPredeclared(name) {
		return &Type{Name: name, Builtin: true}, nil
	}
	if t := s.types[name]; t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
}

// Types returns every declared type, sorted by qualified name.
func (s *Scope) Types() []*Type {
	ret := make([]*Type, 0, len(s.types))
	for _, t := range s.types {
		ret = append(ret, t)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].QualifiedName() < ret[j].QualifiedName() })
	return ret
}

// Release drops the index. A released Scope resolves nothing.
func (s *Scope) Release() {
	s.types = nil
}

func (t *Type) QualifiedName() string {
	if t.Builtin {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// Method returns the method with exactly the given name and parameter types. Methods
// promoted from embedded types are found too; a method declared at a shallower depth
// hides any deeper method of the same name.
func (t *Type) Method(name string, params ...string) (Method, bool) {
	level := []*Type{t}
	seen := map[*Type]bool{t: true}
	for len(level) > 0 {
		declared := false
		for _, lt := range level {
			for _, m := range lt.methods[name] {
				if equalStrings(m.Params, params) {
					return m, true
				}
				declared = true
			}
		}
		if declared {
			break
		}
		var next []*Type
		for _, lt := range level {
			for _, et := range lt.embeddedTypes() {
				if !seen[et] {
					seen[et] = true
					next = append(next, et)
				}
			}
		}
		level = next
	}
	return Method{}, false
}

func (t *Type) embeddedTypes() []*Type {
	if t.scope == nil {
		return nil
	}
	var ret []*Type
	for _, name := range t.embedded {
		if et := t.scope.types[name]; et != nil {
			ret = append(ret, et)
		}
	}
	return ret
}

// Methods returns all methods of the type, sorted by name.
func (t *Type) Methods() []Method {
	var ret []Method
	for _, ms := range t.methods {
		ret = append(ret, ms...)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

func (m Method) String() string {
	return m.Name + "(" + strings.Join(m.Params, ", ") + ")"
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
