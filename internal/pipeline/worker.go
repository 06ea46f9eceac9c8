package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/dgallion1/wikistruct/internal/archive"
	"github.com/dgallion1/wikistruct/internal/entity"
	"github.com/dgallion1/wikistruct/internal/fetch"
	"github.com/dgallion1/wikistruct/internal/parser"
	"github.com/dgallion1/wikistruct/internal/store"
	"github.com/dgallion1/wikistruct/internal/structurer"
)

// Worker processes one job at a time: fetches or reloads each page,
// structures it, and writes the entity record to the store.
type Worker struct {
	client  *fetch.Client
	archive *archive.Archive
	store   *store.Store
	specs   map[entity.Kind]entity.Spec
	log     *slog.Logger

	fetchDelay time.Duration
}

func NewWorker(client *fetch.Client, arch *archive.Archive, st *store.Store, specs map[entity.Kind]entity.Spec, log *slog.Logger, fetchDelay time.Duration) *Worker {
	return &Worker{
		client:     client,
		archive:    arch,
		store:      st,
		specs:      specs,
		log:        log,
		fetchDelay: fetchDelay,
	}
}

// Process runs a job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "mode", job.Mode)

	spec, ok := w.specs[job.Kind]
	if !ok {
		job.AddError(fmt.Sprintf("unknown entity kind: %s", job.Kind))
		job.SetStatus(StatusFailed, "resolving kind")
		return
	}

	var hadErrors, anyStored bool
	switch job.Mode {
	case ModeRebuild:
		hadErrors, anyStored = w.rebuild(ctx, job, spec, log)
	default:
		hadErrors, anyStored = w.collect(ctx, job, spec, log)
	}

	switch {
	case hadErrors && anyStored:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job finished", "status", job.Status)
}

// collect fetches each requested page from the wiki. Pages whose newest
// revision is already archived reuse the archived markdown instead of
// refetching; everything still goes through structuring and storage so the
// record reflects the current kind spec.
func (w *Worker) collect(ctx context.Context, job *Job, spec entity.Spec, log *slog.Logger) (hadErrors, anyStored bool) {
	job.SetTotalDocs(len(job.Titles))

	for i, title := range job.Titles {
		if ctx.Err() != nil {
			job.AddError("canceled: " + ctx.Err().Error())
			return true, anyStored
		}
		// Space out wiki requests.
		if i > 0 && w.fetchDelay > 0 {
			select {
			case <-time.After(w.fetchDelay):
			case <-ctx.Done():
				job.AddError("canceled: " + ctx.Err().Error())
				return true, anyStored
			}
		}

		job.SetStatus(StatusFetching, "fetching "+title)

		var revid int64
		err := w.withRetry(ctx, log, "revision query", func() error {
			var qerr error
			revid, qerr = w.client.PageRevID(ctx, title)
			return qerr
		})
		if err != nil {
			log.Error("revision query failed", "title", title, "error", err)
			job.AddError(fmt.Sprintf("%s: revision query: %s", title, err))
			job.IncrProcessed()
			hadErrors = true
			continue
		}

		kind := string(job.Kind)
		var markdown []byte
		if w.archive.Has(kind, title, revid) {
			log.Info("revision already archived", "title", title, "revid", revid)
			job.IncrSkipped()
			markdown, err = w.archive.Read(kind, title, revid)
			if err != nil {
				job.AddError(fmt.Sprintf("%s: read archive: %s", title, err))
				job.IncrProcessed()
				hadErrors = true
				continue
			}
		} else {
			var rawHTML string
			err = w.withRetry(ctx, log, "page fetch", func() error {
				var ferr error
				rawHTML, ferr = w.client.PageHTML(ctx, title)
				return ferr
			})
			if err != nil {
				log.Error("page fetch failed", "title", title, "error", err)
				job.AddError(fmt.Sprintf("%s: fetch: %s", title, err))
				job.IncrProcessed()
				hadErrors = true
				continue
			}

			job.SetStatus(StatusConverting, "converting "+title)
			md, err := fetch.ToMarkdown(rawHTML)
			if err != nil {
				job.AddError(fmt.Sprintf("%s: convert: %s", title, err))
				job.IncrProcessed()
				hadErrors = true
				continue
			}
			markdown = []byte(md)

			if err := w.archive.Save(kind, title, revid, markdown); err != nil {
				log.Error("archive write failed", "title", title, "error", err)
				job.AddError(fmt.Sprintf("%s: archive: %s", title, err))
				hadErrors = true
				// Keep going: the fetched content can still be structured.
			}
		}

		if w.structureAndStore(ctx, job, spec, title, revid, markdown, log) {
			anyStored = true
		} else {
			hadErrors = true
		}
		job.IncrProcessed()
	}
	return hadErrors, anyStored
}

// rebuild re-structures the newest archived revision of each page. With no
// explicit titles, every archived page of any title is rebuilt.
func (w *Worker) rebuild(ctx context.Context, job *Job, spec entity.Spec, log *slog.Logger) (hadErrors, anyStored bool) {
	job.SetStatus(StatusParsing, "scanning archive")

	latest, err := w.archive.Latest(string(job.Kind), log)
	if err != nil {
		job.AddError("scan archive: " + err.Error())
		return true, false
	}

	if len(job.Titles) > 0 {
		filtered := make(map[string]string, len(job.Titles))
		for _, title := range job.Titles {
			if path, ok := latest[title]; ok {
				filtered[title] = path
			} else {
				job.AddError(fmt.Sprintf("%s: not archived", title))
				hadErrors = true
			}
		}
		latest = filtered
	}
	job.SetTotalDocs(len(latest))

	for title, path := range latest {
		if ctx.Err() != nil {
			job.AddError("canceled: " + ctx.Err().Error())
			return true, anyStored
		}

		revid := revisionFromPath(path)
		markdown, err := w.archive.Read(string(job.Kind), title, revid)
		if err != nil {
			job.AddError(fmt.Sprintf("%s: read archive: %s", title, err))
			job.IncrProcessed()
			hadErrors = true
			continue
		}

		if w.structureAndStore(ctx, job, spec, title, revid, markdown, log) {
			anyStored = true
		} else {
			hadErrors = true
		}
		job.IncrProcessed()
	}
	return hadErrors, anyStored
}

// structureAndStore parses one markdown document, assembles the entity
// record, and persists record, quotes, and relations. Returns true on a
// successful store.
func (w *Worker) structureAndStore(ctx context.Context, job *Job, spec entity.Spec, title string, revid int64, markdown []byte, log *slog.Logger) bool {
	job.SetStatus(StatusParsing, "parsing "+title)
	filename := title + ".md"
	p, err := parser.ForFile(filename)
	if err != nil {
		job.AddError(fmt.Sprintf("%s: %s", title, err))
		return false
	}
	nodes, err := p.Parse(bytes.NewReader(markdown), filename)
	if err != nil {
		log.Error("parse failed", "title", title, "error", err)
		job.AddError(fmt.Sprintf("%s: parse: %s", title, err))
		return false
	}

	job.SetStatus(StatusStructuring, "structuring "+title)
	result := entity.Assemble(spec, nodes)

	job.SetStatus(StatusStoring, "storing "+title)
	kind := string(job.Kind)
	if err := w.store.UpsertEntity(ctx, kind, title, revid, result.Record); err != nil {
		log.Error("store failed", "title", title, "error", err)
		job.AddError(fmt.Sprintf("%s: store: %s", title, err))
		return false
	}
	if quotes, ok := result.Record[spec.QuotesKey].(map[string][]structurer.QuoteEntry); ok {
		if err := w.store.ReplaceQuotes(ctx, kind, title, quotes); err != nil {
			log.Error("quote store failed", "title", title, "error", err)
			job.AddError(fmt.Sprintf("%s: quotes: %s", title, err))
		}
	}
	if err := w.store.ReplaceRelations(ctx, kind, title, result.Relations); err != nil {
		log.Error("relation store failed", "title", title, "error", err)
		job.AddError(fmt.Sprintf("%s: relations: %s", title, err))
	}

	job.IncrStored()
	log.Info("entity stored", "title", title, "revid", revid)
	return true
}

// withRetry retries a wiki call on transient failures with exponential
// backoff.
func (w *Worker) withRetry(ctx context.Context, log *slog.Logger, what string, fn func() error) error {
	var lastErr error
	for attempt := range fetch.MaxRetries {
		lastErr = fn()
		if lastErr == nil || !fetch.IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("transient wiki error", "op", what, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(fetch.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

var pathRevision = regexp.MustCompile(`_(\d+)\.[^.]+$`)

// revisionFromPath recovers the revision id from an archive filename like
// dir/白子_12345.md. Zero means the name did not carry one.
func revisionFromPath(path string) int64 {
	base := filepath.Base(path)
	m := pathRevision.FindStringSubmatch(base)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
