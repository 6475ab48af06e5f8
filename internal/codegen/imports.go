package codegen

import (
	"path"
	"sort"
	"strconv"

	"github.com/podhmo/cligen/internal/symbols"
)

// reservedNames are the local identifiers of generated functions.
// Packages with these names are imported under another name.
var reservedNames = []string{"b", "cmd", "defaults", "bind", "target", "child", "r", "ctx", "input"}

// Imports tracks the packages referenced by one generated file and the
// name each one is referred to by.
type Imports struct {
	self    string            // import path of the package being generated
	runtime string            // import path of the runtime package
	byPath  map[string]string // path -> local name
	byName  map[string]string // local name -> path
	used    map[string]bool   // path -> referenced
}

// NewImports creates a tracker for a file in package self. The runtime
// package and "context" keep their own names.
func NewImports(self, runtimeImport string) *Imports {
	im := &Imports{
		self:    self,
		runtime: runtimeImport,
		byPath:  map[string]string{},
		byName:  map[string]string{},
		used:    map[string]bool{},
	}
	for _, name := range reservedNames {
		im.byName[name] = ""
	}
	im.declare(runtimeImport, "cligen")
	im.declare("context", "context")
	return im
}

func (im *Imports) declare(pkgPath, name string) string {
	if name == "" {
		name = path.Base(pkgPath)
	}
	if local, ok := im.byPath[pkgPath]; ok {
		return local
	}
	local := name
	for i := 2; ; i++ {
		if _, taken := im.byName[local]; !taken {
			break
		}
		local = name + strconv.Itoa(i)
	}
	im.byPath[pkgPath] = local
	im.byName[local] = pkgPath
	return local
}

func (im *Imports) runtimeImport() string { return im.runtime }

// Use returns the local name of pkgPath and marks it as imported.
// It returns "" for the package being generated.
func (im *Imports) Use(pkgPath, name string) string {
	if pkgPath == "" || pkgPath == im.self {
		return ""
	}
	local := im.declare(pkgPath, name)
	im.used[pkgPath] = true
	return local
}

// Qualify returns pkg.name, or just name inside the generated package.
func (im *Imports) Qualify(pkgPath, pkgName, name string) string {
	if local := im.Use(pkgPath, pkgName); local != "" {
		return local + "." + name
	}
	return name
}

// Qualifier adapts the tracker to type spelling.
func (im *Imports) Qualifier() symbols.Qualifier {
	return im.Use
}

// Write emits the import declaration of the referenced packages, sorted by path.
func (im *Imports) Write(b *Builder) {
	paths := make([]string, 0, len(im.used))
	for p := range im.used {
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	b.Group("import (", ")", func() {
		for _, p := range paths {
			local := im.byPath[p]
			if local == path.Base(p) {
				b.Line("%q", p)
			} else {
				b.Line("%s %q", local, p)
			}
		}
	})
	b.Blank()
}
