// Package artifacts reads and writes the per-site JSON artifacts under
// <out>/<site-key>/.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

// Artifact file names.
const (
	CandidatesFile     = "candidates.json"
	SnapshotFile       = "site.snapshot.json"
	GraphFile          = "product.graph.json"
	ResearchBundleFile = "research.bundle.json"
	ValueModelFile     = "value.model.json"
	NormalizedFile     = "normalized.json"
	ReportFile         = "report.final.json"
	SchemaFile         = "schema.json"
	ExportFile         = "export.bundle.json"
)

// ErrArtifactMissing is returned when a required upstream artifact does not exist.
var ErrArtifactMissing = errors.New("artifact missing")

// ArtifactError describes a failed artifact read or write.
type ArtifactError struct {
	Name    string
	Path    string
	Message string
	Cause   error
}

func (e *ArtifactError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ArtifactError) Unwrap() error {
	return e.Cause
}

// Dir is one site's artifact directory.
type Dir struct {
	root string
	key  string
}

// Open returns the artifact directory for siteKey under outDir. Nothing is
// created until the first write.
func Open(outDir, siteKey string) *Dir {
	return &Dir{root: filepath.Join(outDir, siteKey), key: siteKey}
}

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// SiteKey returns the site key the directory was opened with.
func (d *Dir) SiteKey() string { return d.key }

// Path returns the path of an artifact.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// Exists reports whether an artifact is present.
func (d *Dir) Exists(name string) bool {
	info, err := os.Stat(d.Path(name))
	return err == nil && !info.IsDir()
}

// Write stores v as indented JSON. The file is written to a temporary name and
// renamed, so readers never see a partial artifact.
func (d *Dir) Write(name string, v any) error {
	path := d.Path(name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to encode", Cause: err}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to create directory for", Cause: err}
	}
	tmp, err := os.CreateTemp(d.root, name+".tmp-*")
	if err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to write", Cause: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return &ArtifactError{Name: name, Path: path, Message: "failed to write", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to write", Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to write", Cause: err}
	}
	return nil
}

// Read decodes an artifact into v. A missing file yields an error wrapping
// ErrArtifactMissing.
func (d *Dir) Read(name string, v any) error {
	path := d.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ArtifactError{Name: name, Path: path, Message: "required artifact not found:", Cause: ErrArtifactMissing}
	}
	if err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to read", Cause: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ArtifactError{Name: name, Path: path, Message: "failed to parse", Cause: err}
	}
	return nil
}

// WriteCandidates writes candidates.json.
func (d *Dir) WriteCandidates(c *types.Candidates) error { return d.Write(CandidatesFile, c) }

// ReadCandidates reads candidates.json.
func (d *Dir) ReadCandidates() (*types.Candidates, error) {
	var c types.Candidates
	if err := d.Read(CandidatesFile, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// WriteSnapshot writes site.snapshot.json.
func (d *Dir) WriteSnapshot(s *types.SiteSnapshot) error { return d.Write(SnapshotFile, s) }

// ReadSnapshot reads site.snapshot.json.
func (d *Dir) ReadSnapshot() (*types.SiteSnapshot, error) {
	var s types.SiteSnapshot
	if err := d.Read(SnapshotFile, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteGraph writes product.graph.json.
func (d *Dir) WriteGraph(g types.ProductGraph) error { return d.Write(GraphFile, g) }

// LoadCatalog loads product.graph.json as a Catalog.
func (d *Dir) LoadCatalog() (*catalog.Catalog, error) {
	if !d.Exists(GraphFile) {
		return nil, &ArtifactError{Name: GraphFile, Path: d.Path(GraphFile), Message: "required artifact not found:", Cause: ErrArtifactMissing}
	}
	cat, err := catalog.Load(d.Path(GraphFile))
	if err != nil {
		return nil, &ArtifactError{Name: GraphFile, Path: d.Path(GraphFile), Message: "failed to load", Cause: err}
	}
	return cat, nil
}

// WriteNormalized writes normalized.json.
func (d *Dir) WriteNormalized(n *types.NormalizedSite) error { return d.Write(NormalizedFile, n) }

// ReadNormalized reads normalized.json.
func (d *Dir) ReadNormalized() (*types.NormalizedSite, error) {
	var n types.NormalizedSite
	if err := d.Read(NormalizedFile, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// WriteReport writes report.final.json.
func (d *Dir) WriteReport(r *types.Report) error { return d.Write(ReportFile, r) }

// ReadReport reads report.final.json.
func (d *Dir) ReadReport() (*types.Report, error) {
	var r types.Report
	if err := d.Read(ReportFile, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// WriteSchema writes schema.json.
func (d *Dir) WriteSchema(s *types.SiteSchema) error { return d.Write(SchemaFile, s) }

// ReadSchema reads schema.json.
func (d *Dir) ReadSchema() (*types.SiteSchema, error) {
	var s types.SiteSchema
	if err := d.Read(SchemaFile, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadPriorSchema reads schema.json if an earlier build left one. A missing
// file is not an error.
func (d *Dir) ReadPriorSchema() (*types.SiteSchema, error) {
	s, err := d.ReadSchema()
	if errors.Is(err, ErrArtifactMissing) {
		return nil, nil
	}
	return s, err
}

// WriteExport writes export.bundle.json.
func (d *Dir) WriteExport(b *types.ExportBundle) error { return d.Write(ExportFile, b) }
