package syntax

import (
	"github.com/alecthomas/participle/v2"
	"github.com/cockroachdb/errors"

	"github.com/odvcencio/solls/pkg/model"
)

// ErrSyntax marks source that the grammar rejects.
var ErrSyntax = errors.New("syntax error")

// File is one parsed source unit.
type File struct {
	ID   model.FileID
	Path string // source unit name, used for import resolution
	URI  string // document URI, set by the loader
	Src  []byte
	Root *Node

	Lines *model.LineTable
}

// parseUnit runs the grammar. Tests replace it to exercise failure paths.
var parseUnit = solidityParser.ParseBytes

// Parse parses src into a File. Errors wrap ErrSyntax and carry the
// position reported by the grammar. A panic inside the grammar or the
// lowering is reported as ErrSyntax too, so one bad file never takes the
// caller down.
func Parse(id model.FileID, path string, src []byte) (file *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			file = nil
			err = errors.Wrapf(ErrSyntax, "%s: parser failure: %v", path, r)
		}
	}()

	unit, err := parseUnit(path, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, errors.Wrapf(ErrSyntax, "%s:%d:%d: %s", path, pos.Line, pos.Column, perr.Message())
		}
		return nil, errors.Wrapf(ErrSyntax, "%s: %v", path, err)
	}
	return &File{
		ID:    id,
		Path:  path,
		Src:   src,
		Root:  lowerSourceUnit(unit, len(src)),
		Lines: model.NewLineTable(src),
	}, nil
}

// Imports returns the import directives of the file in source order.
func (f *File) Imports() []*Node {
	var out []*Node
	for _, c := range f.Root.Children {
		if c.Kind == KindImport {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the source text covered by s.
func (f *File) Text(s model.Span) string {
	if s.Start < 0 || s.End > len(f.Src) || s.Start > s.End {
		return ""
	}
	return string(f.Src[s.Start:s.End])
}
