// Package retrieval implements the guideline retrieval store: markdown
// documents are split into sections and overlapping chunks, embedded with a
// deterministic bag-of-words hasher, and served by cosine similarity.
package retrieval

import (
	embedfs "embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed guidelines/*.md
var defaultGuidelines embedfs.FS

// Document is one guideline source document.
type Document struct {
	ID       string
	Version  string
	Content  string
	Metadata map[string]string
}

// frontMatter is the optional YAML header on a guideline document.
type frontMatter struct {
	DocID      string            `yaml:"doc_id"`
	DocVersion string            `yaml:"doc_version"`
	Metadata   map[string]string `yaml:"metadata"`
}

// DefaultDocuments returns the guideline corpus embedded in the binary.
func DefaultDocuments() ([]Document, error) {
	return loadFS(defaultGuidelines, "guidelines")
}

// LoadDir reads every .md file in dir as a guideline document. The file
// stem is the doc id unless front matter overrides it.
func LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieval: read dir %s", dir)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "retrieval: read %s", e.Name())
		}
		doc, err := parseDocument(e.Name(), raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, eris.Errorf("retrieval: no guideline documents in %s", dir)
	}
	return docs, nil
}

func loadFS(fsys fs.FS, dir string) ([]Document, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: read embedded guidelines")
	}

	var docs []Document
	for _, e := range entries {
		raw, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "retrieval: read embedded %s", e.Name())
		}
		doc, err := parseDocument(e.Name(), raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseDocument strips optional YAML front matter ("---" fenced) and fills
// defaults from the filename.
func parseDocument(filename string, raw []byte) (Document, error) {
	doc := Document{
		ID:      strings.TrimSuffix(filepath.Base(filename), ".md"),
		Version: "v1.0",
		Content: string(raw),
	}

	body := string(raw)
	if strings.HasPrefix(body, "---\n") {
		rest := body[4:]
		end := strings.Index(rest, "\n---")
		if end >= 0 {
			var fm frontMatter
			if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
				return Document{}, eris.Wrapf(err, "retrieval: front matter in %s", filename)
			}
			if fm.DocID != "" {
				doc.ID = fm.DocID
			}
			if fm.DocVersion != "" {
				doc.Version = fm.DocVersion
			}
			doc.Metadata = fm.Metadata
			doc.Content = strings.TrimPrefix(rest[end+4:], "\n")
		}
	}

	return doc, nil
}
