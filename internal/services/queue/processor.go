package queue

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
	"github.com/aptakhin/lala-search/internal/services/crawler"
	"github.com/aptakhin/lala-search/internal/services/search"
)

// maxRetryAttempts caps how many times a failing URL is retried before the
// processor gives up on it.
const maxRetryAttempts = 5

// Processor drives the crawl pipeline for one tenant keyspace: poll the
// queue, lease an entry by deleting it, then fetch, store, record, index and
// discover in order. Stages are sequential; the only concurrency-safety
// mechanism is the delete-wins lease, and duplicate processing by a losing
// worker is tolerated because the page upsert is idempotent.
type Processor struct {
	store   interfaces.StorageManager
	fetcher interfaces.Fetcher
	objects interfaces.ObjectStorage // nil when no object store is configured
	search  interfaces.SearchService // nil when no search backend is configured
	// tenantID scopes search document ids in multi-tenant mode.
	tenantID     *string
	pollInterval time.Duration
	logger       arbor.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProcessor creates a processor bound to one tenant's storage manager.
// objects and searchService may be nil; a nil object store fails every entry
// with a storage error, a nil search service skips indexing.
func NewProcessor(
	store interfaces.StorageManager,
	fetcher interfaces.Fetcher,
	objects interfaces.ObjectStorage,
	searchService interfaces.SearchService,
	tenantID *string,
	pollInterval time.Duration,
	logger arbor.ILogger,
) *Processor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		store:        store,
		fetcher:      fetcher,
		objects:      objects,
		search:       searchService,
		tenantID:     tenantID,
		pollInterval: pollInterval,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start runs the poll loop until Stop is called. A processed entry is
// followed immediately by the next poll so a backlog drains as fast as
// serial fetches allow; an empty queue or a disabled tenant sleeps for the
// poll interval.
func (p *Processor) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.logger.Info().
			Str("keyspace", p.store.Keyspace()).
			Msg("Queue processor started")

		for {
			select {
			case <-p.ctx.Done():
				return
			default:
			}

			processed, err := p.ProcessNextEntry(p.ctx)
			if err != nil {
				p.logger.Error().Err(err).
					Str("keyspace", p.store.Keyspace()).
					Msg("Error processing queue entry")
				p.sleep()
				continue
			}
			if !processed {
				p.sleep()
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight entry to finish.
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()

	p.logger.Info().
		Str("keyspace", p.store.Keyspace()).
		Msg("Queue processor stopped")
}

func (p *Processor) sleep() {
	select {
	case <-p.ctx.Done():
	case <-time.After(p.pollInterval):
	}
}

// ProcessNextEntry consumes at most one queue entry. It returns false when
// crawling is disabled or the queue is empty, true when an entry was leased
// and processed (even if the crawl itself failed; failures are recorded and
// retried through the queue, not through the caller).
func (p *Processor) ProcessNextEntry(ctx context.Context) (bool, error) {
	enabled, err := p.store.SettingsStorage().IsCrawlingEnabled(ctx)
	if err != nil {
		return false, err
	}
	if !enabled {
		return false, nil
	}

	entry, err := p.store.QueueStorage().NextEntry(ctx)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	p.logger.Info().
		Str("url", entry.URL).
		Int("attempt", entry.AttemptCount).
		Msg("Processing queue entry")

	// The lease: delete before doing any work. Whichever worker's delete
	// lands first owns the entry; a concurrent loser redoes the same work
	// and writes the same idempotent upsert.
	if err := p.store.QueueStorage().Delete(ctx, entry); err != nil {
		return false, err
	}

	if err := p.processEntry(ctx, entry); err != nil {
		p.handleFailure(ctx, entry, err)
	}
	return true, nil
}

// processEntry runs the staged pipeline for one leased entry. The first
// classified failure aborts the remaining stages.
func (p *Processor) processEntry(ctx context.Context, entry *models.CrawlQueueEntry) error {
	// Stage 1: fetch, subject to robots.txt.
	result, err := p.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		return classify(models.ErrorTypeFetch, "failed to crawl: %v", err)
	}
	if result.IsInvalidURL() {
		return classify(models.ErrorTypeInvalidURL, "%s", *result.Error)
	}
	if !result.AllowedByRobots {
		return classify(models.ErrorTypeRobotsDisallowed, "crawling disallowed by robots.txt")
	}
	if result.Content == nil {
		message := "no content retrieved"
		if result.Error != nil {
			message = *result.Error
		}
		return classify(models.ErrorTypeFetch, "%s", message)
	}
	content := *result.Content

	// Stage 2: store the raw body. Required: without an object store every
	// entry fails here.
	if p.objects == nil {
		return classify(models.ErrorTypeStorage, "object storage not configured")
	}
	storageID, compression, err := p.objects.Upload(ctx, []byte(content))
	if err != nil {
		return classify(models.ErrorTypeStorage, "upload failed: %v", err)
	}

	// Stage 3: record the page.
	page, err := p.buildCrawledPage(ctx, entry, result, storageID, compression)
	if err != nil {
		return classify(models.ErrorTypeDatabase, "failed to build page record: %v", err)
	}
	if err := p.store.PageStorage().Upsert(ctx, page); err != nil {
		return classify(models.ErrorTypeDatabase, "failed to upsert page: %v", err)
	}

	// Stages 4 and 5 branch on the combined robots directives: the union of
	// <meta name="robots"> and the X-Robots-Tag header.
	directives := crawler.CombinedDirectives(content, result.XRobotsTag)

	if directives.NoIndex {
		p.logger.Debug().Str("url", entry.URL).Msg("Skipping indexing due to noindex directive")
	} else if p.search != nil {
		if err := p.indexDocument(ctx, entry, page, content); err != nil {
			return classify(models.ErrorTypeSearchIndex, "failed to index: %v", err)
		}
	}

	if directives.NoFollow {
		p.logger.Debug().Str("url", entry.URL).Msg("Skipping link discovery due to nofollow directive")
	} else {
		p.discoverLinks(ctx, entry, content)
	}

	return nil
}

// buildCrawledPage assembles the page row for this crawl. A prior row for
// the same (domain, path) contributes its crawl_count and created_at; the
// first crawl starts both.
func (p *Processor) buildCrawledPage(
	ctx context.Context,
	entry *models.CrawlQueueEntry,
	result *models.CrawlResult,
	storageID uuid.UUID,
	compression models.CompressionType,
) (*models.CrawledPage, error) {
	domain, urlPath := pageKey(entry)
	now := time.Now().UTC()

	contentHash := ""
	contentLength := int64(0)
	if result.Content != nil {
		sum := md5.Sum([]byte(*result.Content))
		contentHash = hex.EncodeToString(sum[:])
		contentLength = int64(len(*result.Content))
	}

	httpStatus := 403
	if result.AllowedByRobots {
		if result.Content != nil {
			httpStatus = 200
		} else {
			httpStatus = 500
		}
	}

	crawlCount := 1
	createdAt := now
	prior, err := p.store.PageStorage().Get(ctx, domain, urlPath)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		crawlCount = prior.CrawlCount + 1
		createdAt = prior.CreatedAt
	}

	return &models.CrawledPage{
		Domain:              domain,
		URLPath:             urlPath,
		URL:                 entry.URL,
		StorageID:           &storageID,
		StorageCompression:  compression,
		LastCrawledAt:       now,
		NextCrawlAt:         now.Add(time.Duration(models.DefaultCrawlFrequencyHours) * time.Hour),
		CrawlFrequencyHours: models.DefaultCrawlFrequencyHours,
		HTTPStatus:          httpStatus,
		ContentHash:         contentHash,
		ContentLength:       contentLength,
		RobotsAllowed:       result.AllowedByRobots,
		ErrorMessage:        result.Error,
		CrawlCount:          crawlCount,
		CreatedAt:           createdAt,
		UpdatedAt:           now,
	}, nil
}

// indexDocument upserts the page into the search index, keyed by the
// tenant-scoped URL fingerprint.
func (p *Processor) indexDocument(ctx context.Context, entry *models.CrawlQueueEntry, page *models.CrawledPage, content string) error {
	cleaned := crawler.StripTags(content)

	var title *string
	if t := crawler.ExtractTitle(content); t != "" {
		title = &t
	}

	doc := &models.IndexedDocument{
		ID:         search.DocumentID(p.tenantID, entry.URL),
		TenantID:   p.tenantID,
		URL:        entry.URL,
		Domain:     entry.Domain,
		Title:      title,
		Content:    cleaned,
		Excerpt:    search.Excerpt(cleaned),
		CrawledAt:  page.LastCrawledAt.Unix(),
		HTTPStatus: page.HTTPStatus,
	}
	return p.search.IndexDocument(ctx, doc)
}

// discoverLinks folds the page's outgoing links back into the queue, subject
// to the admission policy: parsable, non-empty host, allow-listed, not
// already crawled. Enqueue failures are logged and never fail the pipeline.
func (p *Processor) discoverLinks(ctx context.Context, entry *models.CrawlQueueEntry, content string) {
	// Advisory only: surfaces today's volume in the logs, gates nothing.
	if count, err := p.store.PageStorage().CountToday(ctx); err == nil {
		p.logger.Debug().Int64("pages_today", count).Msg("Crawl volume")
	}

	links := crawler.ExtractLinks(content, entry.URL)
	enqueued := 0
	for _, link := range links {
		if p.enqueueLink(ctx, link, entry) {
			enqueued++
		}
	}

	if len(links) > 0 {
		p.logger.Debug().
			Str("url", entry.URL).
			Int("found", len(links)).
			Int("enqueued", enqueued).
			Msg("Links discovered")
	}
}

// enqueueLink admits one discovered link into the queue. Returns true when a
// queue row was written.
func (p *Processor) enqueueLink(ctx context.Context, link string, parent *models.CrawlQueueEntry) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		p.logger.Debug().Err(err).Str("link", link).Msg("Skipping unparsable link")
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}

	allowed, err := p.store.DomainStorage().IsAllowed(ctx, host)
	if err != nil {
		p.logger.Warn().Err(err).Str("domain", host).Msg("Failed to check domain allow list")
		return false
	}
	if !allowed {
		return false
	}

	exists, err := p.store.PageStorage().Exists(ctx, host, parsed.Path)
	if err != nil {
		p.logger.Warn().Err(err).Str("link", link).Msg("Failed to check for existing page")
		return false
	}
	if exists {
		return false
	}

	now := time.Now().UTC()
	newEntry := &models.CrawlQueueEntry{
		Priority:     parent.Priority,
		ScheduledAt:  now,
		URL:          link,
		Domain:       host,
		AttemptCount: 0,
		CreatedAt:    now,
	}
	if err := p.store.QueueStorage().Insert(ctx, newEntry); err != nil {
		p.logger.Warn().Err(err).Str("link", link).Msg("Failed to enqueue discovered link")
		return false
	}
	return true
}

// handleFailure records the classified error and requeues the entry with
// exponential backoff unless the failure is terminal or the retry budget is
// spent.
func (p *Processor) handleFailure(ctx context.Context, entry *models.CrawlQueueEntry, err error) {
	errorType, message := classification(err)
	now := time.Now().UTC()

	domain := entry.Domain
	if parsed, parseErr := url.Parse(entry.URL); parseErr == nil && parsed.Hostname() != "" {
		domain = parsed.Hostname()
	}

	p.logger.Warn().
		Str("url", entry.URL).
		Str("error_type", string(errorType)).
		Str("error", message).
		Msg("Crawl failed")

	crawlError := &models.CrawlError{
		Domain:       domain,
		OccurredAt:   now,
		URL:          entry.URL,
		ErrorType:    errorType,
		ErrorMessage: message,
		AttemptCount: entry.AttemptCount + 1,
	}
	if logErr := p.store.ErrorStorage().LogError(ctx, crawlError); logErr != nil {
		p.logger.Error().Err(logErr).Str("url", entry.URL).Msg("Failed to log crawl error")
	}

	if errorType.IsTerminal() {
		return
	}
	if entry.AttemptCount >= maxRetryAttempts {
		p.logger.Warn().
			Str("url", entry.URL).
			Int("attempts", entry.AttemptCount+1).
			Msg("Giving up after max retry attempts")
		return
	}

	if requeueErr := p.store.QueueStorage().RequeueWithRetry(ctx, entry, now); requeueErr != nil {
		p.logger.Error().Err(requeueErr).Str("url", entry.URL).Msg("Failed to requeue entry for retry")
	}
}

// pageKey derives the (domain, path) primary key for an entry's URL, falling
// back to the entry's stored domain when the URL does not parse.
func pageKey(entry *models.CrawlQueueEntry) (string, string) {
	parsed, err := url.Parse(entry.URL)
	if err != nil || parsed.Hostname() == "" {
		return entry.Domain, ""
	}
	return parsed.Hostname(), parsed.Path
}
