package scope

import (
	"path"
	"strings"
)

// ImportResolver maps an import path written in the source unit named from
// to the source unit name of the imported file. It returns "" when the
// import cannot be resolved.
type ImportResolver func(from, importPath string) string

// RelativeImports resolves "./" and "../" imports against the directory of
// the importing unit and keeps every other path as written.
func RelativeImports(from, importPath string) string {
	if IsRelativeImport(importPath) {
		return path.Join(path.Dir(from), importPath)
	}
	return path.Clean(importPath)
}

// IsRelativeImport reports whether importPath is relative to the importing
// unit.
func IsRelativeImport(importPath string) bool {
	return strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../")
}
