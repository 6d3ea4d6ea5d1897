package scene

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/agentscene/pkg/domain"
)

//go:embed books/*.yaml
var builtinBooks embed.FS

// Editor names of the embedded books.
const (
	EditorArchitecture = "architecture"
	EditorPluggedIn    = "pluggedin"
)

// Library indexes books by editor name.
type Library struct {
	books map[string]*Book
}

// NewLibrary builds a library from already parsed books.
func NewLibrary(books ...*Book) (*Library, error) {
	lib := &Library{books: make(map[string]*Book, len(books))}
	for _, b := range books {
		if _, dup := lib.books[b.Editor]; dup {
			return nil, fmt.Errorf("editor %q defined twice", b.Editor)
		}
		lib.books[b.Editor] = b
	}
	return lib, nil
}

// Builtin returns the embedded books.
func Builtin() (*Library, error) {
	return LoadFS(builtinBooks, "books")
}

// LoadDir reads every *.yaml and *.yml file in dir.
func LoadDir(dir string) (*Library, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads every YAML book under root in fsys.
func LoadFS(fsys fs.FS, root string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	var books []*Book
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		book, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		books = append(books, book)
	}
	return NewLibrary(books...)
}

// Get returns the book of an editor.
func (l *Library) Get(editor string) (*Book, error) {
	b, ok := l.books[editor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEditor, editor)
	}
	return b, nil
}

// Editors lists editor names in alphabetical order.
func (l *Library) Editors() []string {
	names := make([]string, 0, len(l.books))
	for name := range l.books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
