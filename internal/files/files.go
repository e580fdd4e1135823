// Package files resolves Nota documents to the PDF files that back them.
package files

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmylchreest/notadecision/internal/sparql"
)

// ErrNotFound indicates no matching document or file exists.
var ErrNotFound = errors.New("not found")

// ShareScheme prefixes data sources stored on the shared volume.
const ShareScheme = "share://"

// File is the metadata of a stored file.
type File struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`
	Size       int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Extension  string `json:"extension,omitempty" yaml:"extension,omitempty"`
	Created    string `json:"created,omitempty" yaml:"created,omitempty"`
	Modified   string `json:"modified,omitempty" yaml:"modified,omitempty"`
	DataSource string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
}

// Repository looks up documents and files in the triplestore.
type Repository struct {
	db sparql.Querier
}

// NewRepository creates a repository over db.
func NewRepository(db sparql.Querier) *Repository {
	return &Repository{db: db}
}

const notaFileQuery = `PREFIX mu: <http://mu.semte.ch/vocabularies/core/>
PREFIX dossier: <https://data.vlaanderen.be/ns/dossier#>
PREFIX prov: <http://www.w3.org/ns/prov#>
PREFIX dct: <http://purl.org/dc/terms/>
PREFIX nfo: <http://www.semanticdesktop.org/ontologies/2007/03/22/nfo#>

SELECT DISTINCT ?uuid WHERE {
  ?s a dossier:Stuk ;
    mu:uuid %s .
  {
    ?s prov:value ?file .
  }
  UNION
  {
    ?s prov:value/^prov:hadPrimarySource ?file .
  }
  ?file a nfo:FileDataObject ;
    mu:uuid ?uuid ;
    dct:format ?format .
  FILTER(CONTAINS(?format, "application/pdf"))
}`

const fileByIDQuery = `PREFIX mu: <http://mu.semte.ch/vocabularies/core/>
PREFIX nfo: <http://www.semanticdesktop.org/ontologies/2007/03/22/nfo#>
PREFIX dbpedia: <http://dbpedia.org/ontology/>
PREFIX dct: <http://purl.org/dc/terms/>
PREFIX nie: <http://www.semanticdesktop.org/ontologies/2007/01/19/nie#>

SELECT ?name ?format ?size ?extension ?created ?modified ?dataSource
WHERE {
  ?uri a nfo:FileDataObject ;
    mu:uuid %s .
  OPTIONAL { ?uri nfo:fileName ?name }
  OPTIONAL { ?uri dct:format ?format }
  OPTIONAL { ?uri nfo:fileSize ?size }
  OPTIONAL { ?uri dbpedia:fileExtension ?extension }
  OPTIONAL { ?uri dct:created ?created }
  OPTIONAL { ?uri dct:modified ?modified }
  OPTIONAL { ?dataSource nie:dataSource ?uri }
}
LIMIT 1`

// NotaFile returns the id of the PDF file attached to the Nota, either
// directly or through the file it was derived from.
func (r *Repository) NotaFile(ctx context.Context, notaID string) (string, error) {
	bindings, err := r.db.Query(ctx, fmt.Sprintf(notaFileQuery, sparql.EscapeString(notaID)))
	if err != nil {
		return "", fmt.Errorf("query file of nota %s: %w", notaID, err)
	}
	for _, b := range bindings {
		if id := b["uuid"]; id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("pdf file for nota %s: %w", notaID, ErrNotFound)
}

// FileByID returns the metadata of the file with the given id.
func (r *Repository) FileByID(ctx context.Context, fileID string) (*File, error) {
	bindings, err := r.db.Query(ctx, fmt.Sprintf(fileByIDQuery, sparql.EscapeString(fileID)))
	if err != nil {
		return nil, fmt.Errorf("query file %s: %w", fileID, err)
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}

	b := bindings[0]
	f := &File{
		ID:         fileID,
		Name:       b["name"],
		Format:     b["format"],
		Extension:  b["extension"],
		Created:    b["created"],
		Modified:   b["modified"],
		DataSource: b["dataSource"],
	}
	if s := b["size"]; s != "" {
		size, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("file %s: invalid size %q: %w", fileID, s, err)
		}
		f.Size = size
	}
	return f, nil
}

// LocalPath maps a share:// data source onto shareRoot. Other schemes and
// paths escaping the root are rejected.
func LocalPath(shareRoot, dataSource string) (string, error) {
	rel, ok := strings.CutPrefix(dataSource, ShareScheme)
	if !ok {
		return "", fmt.Errorf("data source %q: unsupported scheme", dataSource)
	}
	if rel == "" {
		return "", fmt.Errorf("data source %q: empty path", dataSource)
	}

	clean := path.Clean("/" + rel)
	if clean != "/"+rel {
		return "", fmt.Errorf("data source %q: path escapes share root", dataSource)
	}
	return filepath.Join(shareRoot, filepath.FromSlash(clean)), nil
}
