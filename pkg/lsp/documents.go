package lsp

import (
	"sync"

	"github.com/cockroachdb/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/pkg/model"
)

// ErrDocumentNotOpen is returned when a change arrives for a document the
// client never opened.
var ErrDocumentNotOpen = errors.New("document not open")

// Document is the editor state of one open file.
type Document struct {
	URI     protocol.DocumentUri
	Version protocol.Integer
	Text    string
}

// Documents tracks open documents by canonical URI.
type Documents struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*Document
}

func NewDocuments() *Documents {
	return &Documents{docs: make(map[protocol.DocumentUri]*Document)}
}

func (d *Documents) Open(uri protocol.DocumentUri, version protocol.Integer, text string) *Document {
	doc := &Document{URI: uri, Version: version, Text: text}
	d.mu.Lock()
	d.docs[uri] = doc
	d.mu.Unlock()
	return doc
}

func (d *Documents) Get(uri protocol.DocumentUri) (*Document, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.docs[uri]
	return doc, ok
}

func (d *Documents) Close(uri protocol.DocumentUri) {
	d.mu.Lock()
	delete(d.docs, uri)
	d.mu.Unlock()
}

func (d *Documents) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Apply applies content changes in order and returns the new text. Whole
// document changes replace the text; ranged changes splice it.
func (d *Documents) Apply(uri protocol.DocumentUri, version protocol.Integer, changes []any) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.docs[uri]
	if !ok {
		return "", errors.Wrapf(ErrDocumentNotOpen, "%s", uri)
	}
	text := doc.Text
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case *protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			next, err := splice(text, c)
			if err != nil {
				return "", errors.Wrapf(err, "%s", uri)
			}
			text = next
		case *protocol.TextDocumentContentChangeEvent:
			next, err := splice(text, *c)
			if err != nil {
				return "", errors.Wrapf(err, "%s", uri)
			}
			text = next
		default:
			return "", errors.Newf("%s: unsupported content change %T", uri, change)
		}
	}
	doc.Text = text
	doc.Version = version
	return text, nil
}

func splice(text string, c protocol.TextDocumentContentChangeEvent) (string, error) {
	if c.Range == nil {
		return c.Text, nil
	}
	lines := model.NewLineTable([]byte(text))
	start, err := lines.Offset(toModel(c.Range.Start))
	if err != nil {
		return "", err
	}
	end, err := lines.Offset(toModel(c.Range.End))
	if err != nil {
		return "", err
	}
	if end < start {
		return "", errors.Wrapf(model.ErrOutOfRange, "range end %d before start %d", end, start)
	}
	return text[:start] + c.Text + text[end:], nil
}

func toModel(p protocol.Position) model.Position {
	return model.Position{Line: int(p.Line), Character: int(p.Character)}
}
