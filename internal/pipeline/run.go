// Package pipeline provides the high-level orchestration for compiling a
// commerce site into its artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/site-compiler/internal/artifacts"
	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/compiler"
	"github.com/jonathan/site-compiler/internal/config"
	"github.com/jonathan/site-compiler/internal/crawling"
	"github.com/jonathan/site-compiler/internal/dedupe"
	"github.com/jonathan/site-compiler/internal/extraction"
	"github.com/jonathan/site-compiler/internal/fetch"
	"github.com/jonathan/site-compiler/internal/logging"
	"github.com/jonathan/site-compiler/internal/normalize"
	"github.com/jonathan/site-compiler/internal/observability"
	"github.com/jonathan/site-compiler/internal/pages"
	"github.com/jonathan/site-compiler/internal/pipeline/steps"
	"github.com/jonathan/site-compiler/internal/research"
	"github.com/jonathan/site-compiler/internal/schemas"
	"github.com/jonathan/site-compiler/internal/types"
)

// ErrNoProducts is returned when extraction yields nothing from a non-empty
// candidate set.
var ErrNoProducts = errors.New("no products extracted")

// StageError attributes a fatal error to a pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("[%s] ERROR: %v", strings.ToUpper(e.Stage), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	Config     config.Config      // merged with defaults by New
	Fetcher    fetch.Fetcher      // nil builds a polite fetch.Client from Config
	Log        logrus.FieldLogger // nil discards
	Out        io.Writer          // progress and verbose output; nil is os.Stdout
	OnProgress ProgressCallback
	Now        func() time.Time // defaults to time.Now
}

// Runner executes pipeline stages against per-site artifact directories.
type Runner struct {
	cfg        config.Config
	fetcher    fetch.Fetcher
	log        logrus.FieldLogger
	out        io.Writer
	printer    *observability.Printer
	onProgress ProgressCallback
	now        func() time.Time
}

// New creates a Runner.
func New(opts Options) *Runner {
	cfg := opts.Config.MergeWithDefaults(config.Config{})
	log := logging.OrDiscard(opts.Log)

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.ClientConfig{
			Timeout:      cfg.Timeout(),
			UserAgent:    cfg.UserAgent,
			RequestDelay: cfg.RequestDelay(),
			MaxInFlight:  cfg.Concurrency,
			Retries:      cfg.Retries,
		}, log)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		cfg:        cfg,
		fetcher:    fetcher,
		log:        log,
		out:        out,
		printer:    observability.NewPrinter(out),
		onProgress: opts.OnProgress,
		now:        now,
	}
}

// Config returns the effective configuration.
func (r *Runner) Config() config.Config { return r.cfg }

// emitProgress calls the progress callback if configured
func (r *Runner) emitProgress(step, runID, message string, content any) {
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

//nolint:errcheck // progress output; errors are not recoverable
func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// OpenSite returns the artifact directory for a site key.
func (r *Runner) OpenSite(siteKey string) *artifacts.Dir {
	return artifacts.Open(r.cfg.OutDir, siteKey)
}

// Compile runs discover, extract, catalog and assemble for rawURL.
func (r *Runner) Compile(ctx context.Context, rawURL string) (*artifacts.Dir, error) {
	r.printf("Step 1/4: Discovering product URLs from %s...\n", rawURL)
	dir, _, err := r.Discover(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	r.printf("Step 2/4: Extracting products...\n")
	if _, err := r.Extract(ctx, dir); err != nil {
		return dir, err
	}

	r.printf("Step 3/4: Building product catalog...\n")
	if _, err := r.Catalog(dir); err != nil {
		return dir, err
	}

	r.printf("Step 4/4: Assembling normalized site...\n")
	if _, _, err := r.Assemble(dir); err != nil {
		return dir, err
	}

	r.printf("Done! Artifacts written to %s\n", dir.Root())
	return dir, nil
}

// Discover crawls the site and writes candidates.json. The homepage snapshot is
// taken from the root HTML fetched by the crawl.
func (r *Runner) Discover(ctx context.Context, rawURL string) (*artifacts.Dir, *types.Candidates, error) {
	root, err := crawling.NormalizeSiteURL(rawURL)
	if err != nil {
		return nil, nil, stageErr(steps.Discover, err)
	}
	key, err := crawling.SiteKey(root)
	if err != nil {
		return nil, nil, stageErr(steps.Discover, err)
	}
	runID := uuid.New().String()
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "site": key})

	crawler := crawling.NewCrawler(r.fetcher, crawling.Options{
		MaxListingPages: r.cfg.MaxListingPages,
		Timeout:         r.cfg.CrawlTimeout(),
	}, log)
	discovery, err := crawler.Discover(ctx, root)
	if err != nil {
		return nil, nil, stageErr(steps.Discover, err)
	}

	// The crawl reports the post-redirect root; the site key stays on the input
	root = discovery.Root
	homeHTML := discovery.RootHTML
	if r.cfg.UseBrowser {
		homeHTML = fetch.RenderIfThin(ctx, root, homeHTML, r.cfg.Timeout(), log)
	}
	var homepage *types.PageSnapshot
	if snap, err := pages.Snapshot(homeHTML, root); err != nil {
		log.Warnf("Homepage snapshot failed: %v", err)
	} else {
		homepage = snap
	}

	candidates := &types.Candidates{
		RunID:          runID,
		Root:           root,
		Domain:         crawling.Domain(root),
		StoreType:      string(discovery.StoreType),
		Products:       discovery.Products,
		Visited:        discovery.Visited,
		FailedListings: discovery.FailedListings,
		Homepage:       homepage,
		DiscoveredAt:   r.timestamp(),
	}

	dir := r.OpenSite(key)
	if err := dir.WriteCandidates(candidates); err != nil {
		return nil, nil, stageErr(steps.Discover, err)
	}
	if r.cfg.Verbose {
		r.printer.PrintDiscovery(candidates)
	}
	r.emitProgress(steps.Discover, runID,
		fmt.Sprintf("Discovered %d product URLs across %d listing pages", len(candidates.Products), len(candidates.Visited)), nil)

	return dir, candidates, nil
}

// Extract fetches every candidate detail page and the homepage's content pages,
// then writes site.snapshot.json.
func (r *Runner) Extract(ctx context.Context, dir *artifacts.Dir) (*types.SiteSnapshot, error) {
	if err := steps.ValidateDependencies(dir, steps.Extract); err != nil {
		return nil, stageErr(steps.Extract, err)
	}
	candidates, err := dir.ReadCandidates()
	if err != nil {
		return nil, stageErr(steps.Extract, err)
	}
	log := r.log.WithFields(logrus.Fields{"run_id": candidates.RunID, "site": dir.SiteKey()})

	extractor := extraction.New(r.fetcher, extraction.Options{
		Workers:        r.cfg.Concurrency,
		KeepRawContent: r.cfg.KeepRawContent,
	}, log)
	raws, stats, err := extractor.ExtractAll(ctx, candidates.Products)
	if err != nil {
		return nil, stageErr(steps.Extract, err)
	}
	if len(candidates.Products) > 0 && len(raws) == 0 {
		return nil, stageErr(steps.Extract, fmt.Errorf("%w from %d candidates: %s",
			ErrNoProducts, len(candidates.Products), observability.FormatStats(stats)))
	}
	r.printf("  Extracted %s\n", observability.FormatStats(stats))

	snapshot := &types.SiteSnapshot{
		RunID:       candidates.RunID,
		Domain:      candidates.Domain,
		StoreType:   candidates.StoreType,
		Products:    make([]types.ProductSnapshot, 0, len(raws)),
		Stats:       stats,
		Candidates:  len(candidates.Products),
		ExtractedAt: r.timestamp(),
	}
	for _, raw := range raws {
		snapshot.Products = append(snapshot.Products, types.ProductSnapshot{URL: raw.URL, Product: raw})
	}
	if candidates.Homepage != nil {
		snapshot.Pages = append(snapshot.Pages, *candidates.Homepage)
		snapshot.Pages = append(snapshot.Pages, r.contentPages(ctx, candidates.Homepage, log)...)
	}

	if err := dir.WriteSnapshot(snapshot); err != nil {
		return nil, stageErr(steps.Extract, err)
	}
	if r.cfg.Verbose {
		r.printer.PrintExtraction(snapshot)
	}
	r.emitProgress(steps.Extract, candidates.RunID,
		fmt.Sprintf("Extracted %d products (%s)", stats.Success, observability.FormatStats(stats)), stats)

	return snapshot, nil
}

// contentPages snapshots the homepage's same-origin content links. Failures
// are logged and skipped.
func (r *Runner) contentPages(ctx context.Context, home *types.PageSnapshot, log logrus.FieldLogger) []types.PageSnapshot {
	var out []types.PageSnapshot
	for _, link := range pages.ContentLinks(home.Nav, r.cfg.MaxContentPages) {
		if ctx.Err() != nil {
			break
		}
		result, err := r.fetcher.Fetch(ctx, link)
		if err != nil {
			log.WithField("url", link).Warnf("Content page fetch failed, skipping: %v", err)
			continue
		}
		snap, err := pages.Snapshot(result.HTML, link)
		if err != nil {
			log.WithField("url", link).Warnf("Content page snapshot failed, skipping: %v", err)
			continue
		}
		out = append(out, *snap)
	}
	return out
}

// Catalog normalizes and deduplicates the snapshot's products and writes
// product.graph.json.
func (r *Runner) Catalog(dir *artifacts.Dir) (*catalog.Catalog, error) {
	if err := steps.ValidateDependencies(dir, steps.Catalog); err != nil {
		return nil, stageErr(steps.Catalog, err)
	}
	snapshot, err := dir.ReadSnapshot()
	if err != nil {
		return nil, stageErr(steps.Catalog, err)
	}

	raws := make([]types.RawProduct, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		raw := p.Product
		if raw.URL == "" {
			raw.URL = p.URL
		}
		raws = append(raws, raw)
	}
	entries := dedupe.Products(normalize.Products(raws), dedupe.Options{Exclude: r.cfg.Dedupe.Exclude})
	cat := catalog.New(entries)
	graph := cat.Graph()

	data, err := json.Marshal(graph)
	if err != nil {
		return nil, stageErr(steps.Catalog, err)
	}
	if err := schemas.ValidateProductGraph(data); err != nil {
		return nil, stageErr(steps.Catalog, err)
	}
	if err := dir.WriteGraph(graph); err != nil {
		return nil, stageErr(steps.Catalog, err)
	}

	r.printf("  Catalog: %d products, %d variants\n", cat.Len(), dedupe.VariantCount(entries))
	if r.cfg.Verbose {
		r.printer.PrintCatalog(&graph)
	}
	r.emitProgress(steps.Catalog, snapshot.RunID,
		fmt.Sprintf("Deduplicated %d products into %d catalog entries", len(raws), cat.Len()), nil)

	return cat, nil
}

// Assemble binds research, gathers pages and navigation, and writes
// normalized.json and report.final.json. Derived pages already present in
// normalized.json are carried over.
func (r *Runner) Assemble(dir *artifacts.Dir) (*types.NormalizedSite, *types.Report, error) {
	if err := steps.ValidateDependencies(dir, steps.Assemble); err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}
	snapshot, err := dir.ReadSnapshot()
	if err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}
	cat, err := dir.LoadCatalog()
	if err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}

	bundlePath := firstNonEmpty(r.cfg.ResearchBundle, dir.Path(artifacts.ResearchBundleFile))
	valuePath := firstNonEmpty(r.cfg.ValueModel, dir.Path(artifacts.ValueModelFile))
	bundle, model, err := research.Load(bundlePath, valuePath)
	if err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}
	attachment := research.Attach(cat, bundle, model)

	site := &types.NormalizedSite{
		Domain:     snapshot.Domain,
		Brand:      snapshot.Domain,
		StoreType:  snapshot.StoreType,
		Pages:      make([]types.Page, 0, len(snapshot.Pages)),
		Nav:        []types.NavEntry{},
		Products:   cat.Entries(),
		Media:      []string{},
		Categories: cat.Categories(),
		Brands:     cat.Brands(),
		Research:   attachment,
	}
	media := make(map[string]bool)
	for _, snap := range snapshot.Pages {
		site.Pages = append(site.Pages, pages.ToPage(snap))
		if snap.Path == "/" {
			if snap.SiteName != "" {
				site.Brand = snap.SiteName
			}
			site.Nav = append(site.Nav, snap.Nav...)
		}
		for _, m := range snap.Media {
			if !media[m] {
				media[m] = true
				site.Media = append(site.Media, m)
			}
		}
	}
	if prior, err := dir.ReadNormalized(); err == nil {
		site.DerivedPages = prior.DerivedPages
	}

	report := &types.Report{
		RunID:           snapshot.RunID,
		Brand:           site.Brand,
		Domain:          site.Domain,
		ProductsCount:   cat.Len(),
		VariantsCount:   dedupe.VariantCount(site.Products),
		CandidatesCount: snapshot.Candidates,
		Stats:           snapshot.Stats,
		GeneratedAt:     r.timestamp(),
	}

	if err := dir.WriteNormalized(site); err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}
	if err := dir.WriteReport(report); err != nil {
		return nil, nil, stageErr(steps.Assemble, err)
	}
	if attachment != nil && attachment.Unmatched > 0 {
		r.log.WithField("unmatched", attachment.Unmatched).Warn("Some research facts matched no product")
	}
	if r.cfg.Verbose {
		r.printer.PrintReport(report)
	}
	r.emitProgress(steps.Assemble, snapshot.RunID,
		fmt.Sprintf("Assembled %d pages and %d products", len(site.Pages), len(site.Products)), report)

	return site, report, nil
}

// Build compiles normalized.json into schema.json and export.bundle.json. Ids
// from an existing schema.json are preserved.
func (r *Runner) Build(dir *artifacts.Dir) (*types.SiteSchema, error) {
	if err := steps.ValidateDependencies(dir, steps.Build); err != nil {
		return nil, stageErr(steps.Build, err)
	}
	site, err := dir.ReadNormalized()
	if err != nil {
		return nil, stageErr(steps.Build, err)
	}
	prior, err := dir.ReadPriorSchema()
	if err != nil {
		r.log.Warnf("Ignoring unreadable prior schema: %v", err)
		prior = nil
	}

	r.printf("Step 1/2: Compiling site schema...\n")
	cat := catalog.New(site.Products)
	schema := compiler.Compile(site, cat, prior)

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, stageErr(steps.Build, err)
	}
	if err := schemas.ValidateSiteSchema(data); err != nil {
		return nil, stageErr(steps.Build, err)
	}

	r.printf("Step 2/2: Writing schema and export bundle...\n")
	if err := dir.WriteSchema(schema); err != nil {
		return nil, stageErr(steps.Build, err)
	}
	bundle := &types.ExportBundle{Schema: *schema, Products: cat.Entries(), GeneratedAt: r.timestamp()}
	if err := dir.WriteExport(bundle); err != nil {
		return nil, stageErr(steps.Build, err)
	}

	if r.cfg.Verbose {
		r.printer.PrintSchema(schema)
	}
	r.emitProgress(steps.Build, "",
		fmt.Sprintf("Compiled %d pages for %s", schema.Meta.PageCount, schema.Domain), schema.Meta)

	return schema, nil
}

// Validate checks schema.json against the embedded site schema.
func (r *Runner) Validate(dir *artifacts.Dir) error {
	if err := steps.ValidateDependencies(dir, steps.Validate); err != nil {
		return stageErr(steps.Validate, err)
	}
	data, err := os.ReadFile(dir.Path(artifacts.SchemaFile))
	if err != nil {
		return stageErr(steps.Validate, err)
	}
	if err := schemas.ValidateSiteSchema(data); err != nil {
		return stageErr(steps.Validate, err)
	}
	// Decoding also rejects unknown block types
	if _, err := dir.ReadSchema(); err != nil {
		return stageErr(steps.Validate, err)
	}
	r.emitProgress(steps.Validate, "", fmt.Sprintf("%s is valid", dir.Path(artifacts.SchemaFile)), nil)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
