package keymap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Loader reads user keymap overrides from the same TOML format
// internal/config uses for the rest of nota's settings, rather than a
// one-off file format of its own. A user's `--keymap` file or
// `$NOTA_CONFIG_DIR/keymap.toml` is one Loader call away from a
// Registry.
type Loader struct {
	// searchDirs are scanned for "*.toml" files by LoadAll, e.g. a
	// plugin directory contributing several keymaps at once.
	searchDirs []string
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// AddSearchDir registers a directory LoadAll should scan.
func (l *Loader) AddSearchDir(dir string) {
	l.searchDirs = append(l.searchDirs, dir)
}

// LoadFile reads one keymap from a TOML file.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keymap file: %w", err)
	}
	defer f.Close()
	return l.LoadReader(f)
}

// LoadReader reads one keymap from r's TOML contents.
func (l *Loader) LoadReader(r io.Reader) (*Keymap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keymap: %w", err)
	}

	var doc keymapDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding keymap: %w", err)
	}

	km := &Keymap{
		Name:     doc.Name,
		Mode:     doc.Mode,
		FileType: doc.FileType,
		Priority: doc.Priority,
		Source:   doc.Source,
		Bindings: make([]Binding, 0, len(doc.Bindings)),
	}
	for _, bc := range doc.Bindings {
		km.Bindings = append(km.Bindings, Binding(bc))
	}
	return km, nil
}

// LoadAll reads every "*.toml" file across all registered search
// directories. A directory that can't be listed, or a file that fails
// to parse, is skipped rather than failing the whole load — one
// malformed plugin keymap shouldn't keep the rest from loading.
func (l *Loader) LoadAll() []*Keymap {
	var loaded []*Keymap

	for _, dir := range l.searchDirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			km, err := l.LoadFile(path)
			if err != nil {
				continue
			}
			loaded = append(loaded, km)
		}
	}
	return loaded
}

// LoadAndRegister loads every keymap LoadAll finds and registers each
// into registry, stopping at the first registration failure (a
// malformed binding's key sequence, most likely).
func (l *Loader) LoadAndRegister(registry *Registry) error {
	for _, km := range l.LoadAll() {
		if err := registry.Register(km); err != nil {
			return fmt.Errorf("registering keymap %q: %w", km.Name, err)
		}
	}
	return nil
}

// keymapDoc is a Keymap's TOML file shape.
type keymapDoc struct {
	Name     string       `toml:"name"`
	Mode     string       `toml:"mode,omitempty"`
	FileType string       `toml:"file_type,omitempty"`
	Priority int          `toml:"priority,omitempty"`
	Source   string       `toml:"source,omitempty"`
	Bindings []bindingDoc `toml:"bindings"`
}

type bindingDoc struct {
	Keys        string         `toml:"keys"`
	Action      string         `toml:"action"`
	Args        map[string]any `toml:"args,omitempty"`
	When        string         `toml:"when,omitempty"`
	Description string         `toml:"description,omitempty"`
	Priority    int            `toml:"priority,omitempty"`
	Category    string         `toml:"category,omitempty"`
}

// MarshalTOML renders a keymap in the format LoadFile reads back.
func (k *Keymap) MarshalTOML() ([]byte, error) {
	doc := keymapDoc{
		Name:     k.Name,
		Mode:     k.Mode,
		FileType: k.FileType,
		Priority: k.Priority,
		Source:   k.Source,
		Bindings: make([]bindingDoc, 0, len(k.Bindings)),
	}
	for _, b := range k.Bindings {
		doc.Bindings = append(doc.Bindings, bindingDoc(b))
	}
	return toml.Marshal(doc)
}

// SaveFile writes a keymap to path in the TOML format LoadFile reads.
func (k *Keymap) SaveFile(path string) error {
	data, err := k.MarshalTOML()
	if err != nil {
		return fmt.Errorf("marshaling keymap: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing keymap file: %w", err)
	}
	return nil
}
