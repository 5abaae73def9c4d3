package queue

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// memStore is an in-memory StorageManager for pipeline tests. It implements
// every per-entity storage itself with the same semantics the Cassandra
// implementations promise. The mutex keeps tests race-clean when a started
// processor goroutine writes while the test observes progress.
type memStore struct {
	mu              sync.Mutex
	keyspace        string
	queue           []models.CrawlQueueEntry
	pages           map[string]models.CrawledPage
	allowedDomains  map[string]bool
	errors          []models.CrawlError
	crawlingEnabled bool
	pagesCrawled    int64
	tenants         []string
}

func newMemStore() *memStore {
	return &memStore{
		keyspace:        "tenant_test",
		pages:           map[string]models.CrawledPage{},
		allowedDomains:  map[string]bool{},
		crawlingEnabled: true,
	}
}

func pageMapKey(domain, urlPath string) string { return domain + "|" + urlPath }

func (m *memStore) Keyspace() string { return m.keyspace }
func (m *memStore) WithKeyspace(keyspace string) interfaces.StorageManager {
	clone := newMemStore()
	clone.keyspace = keyspace
	return clone
}
func (m *memStore) QueueStorage() interfaces.QueueStorage       { return m }
func (m *memStore) PageStorage() interfaces.PageStorage         { return m }
func (m *memStore) DomainStorage() interfaces.DomainStorage     { return m }
func (m *memStore) ErrorStorage() interfaces.ErrorStorage       { return m }
func (m *memStore) SettingsStorage() interfaces.SettingsStorage { return m }
func (m *memStore) TenantStorage() interfaces.TenantStorage     { return m }
func (m *memStore) AuthStorage() interfaces.AuthStorage         { return nil }
func (m *memStore) Close() error                                { return nil }

func (m *memStore) NextEntry(ctx context.Context) (*models.CrawlQueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil, nil
	}
	entry := m.queue[0]
	return &entry, nil
}

func (m *memStore) Insert(ctx context.Context, entry *models.CrawlQueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, *entry)
	return nil
}

func (m *memStore) Delete(ctx context.Context, entry *models.CrawlQueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, queued := range m.queue {
		if queued.Priority == entry.Priority && queued.ScheduledAt.Equal(entry.ScheduledAt) && queued.URL == entry.URL {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return nil
		}
	}
	return nil // deleting an already-claimed row is a silent no-op
}

func (m *memStore) RequeueWithRetry(ctx context.Context, entry *models.CrawlQueueEntry, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	backoff := time.Duration(1<<uint(entry.AttemptCount)) * time.Minute
	retry := *entry
	retry.Priority++
	retry.AttemptCount++
	retry.LastAttemptAt = &now
	retry.ScheduledAt = now.Add(backoff)
	m.queue = append(m.queue, retry)
	return nil
}

func (m *memStore) Upsert(ctx context.Context, page *models.CrawledPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[pageMapKey(page.Domain, page.URLPath)] = *page
	m.pagesCrawled++
	return nil
}

func (m *memStore) Get(ctx context.Context, domain, urlPath string) (*models.CrawledPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page, ok := m.pages[pageMapKey(domain, urlPath)]; ok {
		return &page, nil
	}
	return nil, nil
}

func (m *memStore) Exists(ctx context.Context, domain, urlPath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pages[pageMapKey(domain, urlPath)]
	return ok, nil
}

func (m *memStore) CountToday(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pagesCrawled, nil
}

// pageCount is for test goroutines observing a running processor.
func (m *memStore) pageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

func (m *memStore) IsAllowed(ctx context.Context, domain string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowedDomains[domain], nil
}
func (m *memStore) Add(ctx context.Context, domain, addedBy string, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowedDomains[domain] = true
	return nil
}
func (m *memStore) List(ctx context.Context) ([]models.AllowedDomain, error) { return nil, nil }
func (m *memStore) Remove(ctx context.Context, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.allowedDomains, domain)
	return nil
}

func (m *memStore) LogError(ctx context.Context, crawlError *models.CrawlError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, *crawlError)
	return nil
}

func (m *memStore) IsCrawlingEnabled(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crawlingEnabled, nil
}
func (m *memStore) SetCrawlingEnabled(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crawlingEnabled = enabled
	return nil
}

func (m *memStore) EnsureDefaultTenant(ctx context.Context, tenantID, name string) error {
	return m.CreateTenant(ctx, tenantID, name)
}
func (m *memStore) CreateTenant(ctx context.Context, tenantID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tenants {
		if existing == tenantID {
			return nil
		}
	}
	m.tenants = append(m.tenants, tenantID)
	return nil
}
func (m *memStore) GetTenantName(ctx context.Context, tenantID string) (*string, error) {
	return nil, nil
}
func (m *memStore) ListTenantIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tenants...), nil
}

// mockFetcher returns canned results per URL.
type mockFetcher struct {
	fetchFunc func(ctx context.Context, rawURL string) (*models.CrawlResult, error)
}

func (f *mockFetcher) Fetch(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
	return f.fetchFunc(ctx, rawURL)
}

// mockObjectStorage records uploads.
type mockObjectStorage struct {
	uploads   [][]byte
	uploadErr error
}

func (o *mockObjectStorage) Upload(ctx context.Context, content []byte) (uuid.UUID, models.CompressionType, error) {
	if o.uploadErr != nil {
		return uuid.Nil, models.CompressionNone, o.uploadErr
	}
	o.uploads = append(o.uploads, content)
	id, err := uuid.NewV7()
	return id, models.CompressionNone, err
}

func (o *mockObjectStorage) GetContent(ctx context.Context, id uuid.UUID, compression models.CompressionType) ([]byte, error) {
	return nil, nil
}

// mockSearchService records indexed documents.
type mockSearchService struct {
	docs     []*models.IndexedDocument
	indexErr error
}

func (s *mockSearchService) EnsureIndex(ctx context.Context) error { return nil }
func (s *mockSearchService) IndexDocument(ctx context.Context, doc *models.IndexedDocument) error {
	if s.indexErr != nil {
		return s.indexErr
	}
	s.docs = append(s.docs, doc)
	return nil
}
func (s *mockSearchService) IndexDocuments(ctx context.Context, docs []*models.IndexedDocument) error {
	for _, doc := range docs {
		if err := s.IndexDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
func (s *mockSearchService) Search(ctx context.Context, request *models.SearchRequest) (*models.SearchResponse, error) {
	return &models.SearchResponse{}, nil
}
func (s *mockSearchService) DeleteDocument(ctx context.Context, docID string) error { return nil }
func (s *mockSearchService) ClearIndex(ctx context.Context) error                   { return nil }

func successFetcher(body string) *mockFetcher {
	return &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		content := body
		return &models.CrawlResult{URL: rawURL, AllowedByRobots: true, Content: &content}, nil
	}}
}

func queueEntry(rawURL string) models.CrawlQueueEntry {
	return models.CrawlQueueEntry{
		Priority:    1,
		ScheduledAt: time.Now().UTC().Truncate(time.Millisecond),
		URL:         rawURL,
		Domain:      "site.test",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newTestProcessor(store *memStore, fetcher interfaces.Fetcher, objects interfaces.ObjectStorage, searchService interfaces.SearchService) *Processor {
	return NewProcessor(store, fetcher, objects, searchService, nil, 10*time.Millisecond, common.GetLogger())
}

func TestProcessNextEntry_HappyPath(t *testing.T) {
	body := `<!doctype html><html><head><title>T</title></head><body><p>hello world</p><a href="/x">x</a></body></html>`
	store := newMemStore()
	store.allowedDomains["site.test"] = true
	entry := queueEntry("https://site.test/p")
	store.queue = append(store.queue, entry)

	objects := &mockObjectStorage{}
	searchSvc := &mockSearchService{}
	p := newTestProcessor(store, successFetcher(body), objects, searchSvc)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	// Lease consumed the original entry; discovery added /x.
	require.Len(t, store.queue, 1)
	assert.Equal(t, "https://site.test/x", store.queue[0].URL)
	assert.Equal(t, entry.Priority, store.queue[0].Priority)
	assert.Equal(t, 0, store.queue[0].AttemptCount)

	// Body stored once.
	require.Len(t, objects.uploads, 1)
	assert.Equal(t, body, string(objects.uploads[0]))

	// Page recorded with the wire-format content hash.
	page, err := store.Get(context.Background(), "site.test", "/p")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 200, page.HTTPStatus)
	assert.Equal(t, 1, page.CrawlCount)
	assert.True(t, page.RobotsAllowed)
	assert.NotNil(t, page.StorageID)
	sum := md5.Sum([]byte(body))
	assert.Equal(t, hex.EncodeToString(sum[:]), page.ContentHash)
	assert.Equal(t, int64(len(body)), page.ContentLength)
	assert.Equal(t, page.LastCrawledAt.Add(24*time.Hour), page.NextCrawlAt)

	// Indexed once with title and cleaned content.
	require.Len(t, searchSvc.docs, 1)
	doc := searchSvc.docs[0]
	assert.Equal(t, "https://site.test/p", doc.URL)
	require.NotNil(t, doc.Title)
	assert.Equal(t, "T", *doc.Title)
	assert.Equal(t, 200, doc.HTTPStatus)
	assert.Empty(t, store.errors)
}

func TestProcessNextEntry_CrawlingDisabled(t *testing.T) {
	store := newMemStore()
	store.crawlingEnabled = false
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	p := newTestProcessor(store, successFetcher("<html></html>"), &mockObjectStorage{}, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
	assert.Len(t, store.queue, 1, "queue must be untouched while crawling is disabled")
	assert.Empty(t, store.errors)
}

func TestProcessNextEntry_EmptyQueue(t *testing.T) {
	store := newMemStore()
	p := newTestProcessor(store, successFetcher("x"), &mockObjectStorage{}, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessNextEntry_RobotsDisallowed(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("https://site.test/private"))

	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		return &models.CrawlResult{URL: rawURL, AllowedByRobots: false}, nil
	}}
	objects := &mockObjectStorage{}
	p := newTestProcessor(store, fetcher, objects, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	// Terminal: error logged, no retry, no page, no body.
	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeRobotsDisallowed, store.errors[0].ErrorType)
	assert.Empty(t, store.queue)
	assert.Empty(t, store.pages)
	assert.Empty(t, objects.uploads)
}

func TestProcessNextEntry_InvalidURL(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("not-a-url"))

	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		message := models.InvalidURLPrefix + " " + rawURL
		return &models.CrawlResult{URL: rawURL, Error: &message}, nil
	}}
	p := newTestProcessor(store, fetcher, &mockObjectStorage{}, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeInvalidURL, store.errors[0].ErrorType)
	assert.Empty(t, store.queue, "invalid URLs are terminal, never retried")
}

func TestProcessNextEntry_FetchFailureRetries(t *testing.T) {
	store := newMemStore()
	entry := queueEntry("https://site.test/flaky")
	store.queue = append(store.queue, entry)

	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		message := "request failed: connection refused"
		return &models.CrawlResult{URL: rawURL, AllowedByRobots: true, Error: &message}, nil
	}}
	p := newTestProcessor(store, fetcher, &mockObjectStorage{}, nil)

	before := time.Now().UTC()
	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeFetch, store.errors[0].ErrorType)
	assert.Equal(t, 1, store.errors[0].AttemptCount)

	// Retry row: attempt+1, priority+1, scheduled out by 2^0 = 1 minute.
	require.Len(t, store.queue, 1)
	retry := store.queue[0]
	assert.Equal(t, entry.AttemptCount+1, retry.AttemptCount)
	assert.Equal(t, entry.Priority+1, retry.Priority)
	assert.False(t, retry.ScheduledAt.Before(before.Add(time.Minute)))
	assert.Equal(t, entry.CreatedAt, retry.CreatedAt, "created_at preserved across retries")
}

func TestProcessNextEntry_BackoffDoubles(t *testing.T) {
	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		message := "request failed"
		return &models.CrawlResult{URL: rawURL, AllowedByRobots: true, Error: &message}, nil
	}}

	for _, attempt := range []int{0, 1, 2, 3, 4} {
		store := newMemStore()
		entry := queueEntry("https://site.test/flaky")
		entry.AttemptCount = attempt
		store.queue = append(store.queue, entry)

		p := newTestProcessor(store, fetcher, &mockObjectStorage{}, nil)
		before := time.Now().UTC()
		_, err := p.ProcessNextEntry(context.Background())
		require.NoError(t, err)

		require.Len(t, store.queue, 1, "attempt %d should requeue", attempt)
		wantDelay := time.Duration(1<<uint(attempt)) * time.Minute
		assert.False(t, store.queue[0].ScheduledAt.Before(before.Add(wantDelay)),
			"attempt %d: scheduled_at %v not pushed out by %v", attempt, store.queue[0].ScheduledAt, wantDelay)
	}
}

func TestProcessNextEntry_GivesUpAfterMaxAttempts(t *testing.T) {
	store := newMemStore()
	entry := queueEntry("https://site.test/always-broken")
	entry.AttemptCount = maxRetryAttempts
	store.queue = append(store.queue, entry)

	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
		message := "request failed"
		return &models.CrawlResult{URL: rawURL, AllowedByRobots: true, Error: &message}, nil
	}}
	p := newTestProcessor(store, fetcher, &mockObjectStorage{}, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	assert.Empty(t, store.queue, "no retry after the attempt budget is spent")
	require.Len(t, store.errors, 1)
}

func TestProcessNextEntry_StorageRequired(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	p := newTestProcessor(store, successFetcher("<html>x</html>"), nil, nil)

	processed, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeStorage, store.errors[0].ErrorType)
	assert.Empty(t, store.pages, "no page row without a stored body")
	assert.Len(t, store.queue, 1, "storage failures are retryable")
}

func TestProcessNextEntry_UploadFailure(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	objects := &mockObjectStorage{uploadErr: fmt.Errorf("bucket unavailable")}
	p := newTestProcessor(store, successFetcher("<html>x</html>"), objects, nil)

	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeStorage, store.errors[0].ErrorType)
}

func TestProcessNextEntry_NoIndexSkipsSearch(t *testing.T) {
	body := `<!doctype html><html><head><meta name="robots" content="noindex"><title>T</title></head>` +
		`<body><a href="/x">x</a></body></html>`
	store := newMemStore()
	store.allowedDomains["site.test"] = true
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	objects := &mockObjectStorage{}
	searchSvc := &mockSearchService{}
	p := newTestProcessor(store, successFetcher(body), objects, searchSvc)

	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	// Body stored, page recorded, search skipped, link still discovered.
	assert.Len(t, objects.uploads, 1)
	assert.Len(t, store.pages, 1)
	assert.Empty(t, searchSvc.docs, "noindex must skip the search adapter")
	require.Len(t, store.queue, 1)
	assert.Equal(t, "https://site.test/x", store.queue[0].URL)
}

func TestProcessNextEntry_NoFollowSkipsDiscovery(t *testing.T) {
	for name, result := range map[string]func(string) *models.CrawlResult{
		"meta tag": func(u string) *models.CrawlResult {
			content := `<html><head><meta name="robots" content="nofollow"></head><body><a href="/x">x</a></body></html>`
			return &models.CrawlResult{URL: u, AllowedByRobots: true, Content: &content}
		},
		"x-robots-tag header": func(u string) *models.CrawlResult {
			content := `<html><body><a href="/x">x</a></body></html>`
			tag := "nofollow"
			return &models.CrawlResult{URL: u, AllowedByRobots: true, Content: &content, XRobotsTag: &tag}
		},
	} {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			store.allowedDomains["site.test"] = true
			store.queue = append(store.queue, queueEntry("https://site.test/p"))

			build := result
			fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
				return build(rawURL), nil
			}}
			searchSvc := &mockSearchService{}
			p := newTestProcessor(store, fetcher, &mockObjectStorage{}, searchSvc)

			_, err := p.ProcessNextEntry(context.Background())
			require.NoError(t, err)

			assert.Empty(t, store.queue, "nofollow must enqueue nothing")
			assert.Len(t, searchSvc.docs, 1, "nofollow alone does not stop indexing")
		})
	}
}

func TestProcessNextEntry_AdmissionPolicy(t *testing.T) {
	body := `<html><body>` +
		`<a href="https://site.test/new">allowed new</a>` +
		`<a href="https://site.test/old">allowed crawled</a>` +
		`<a href="https://other.test/x">not allow-listed</a>` +
		`</body></html>`
	store := newMemStore()
	store.allowedDomains["site.test"] = true
	store.pages[pageMapKey("site.test", "/old")] = models.CrawledPage{Domain: "site.test", URLPath: "/old"}
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	p := newTestProcessor(store, successFetcher(body), &mockObjectStorage{}, nil)

	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	urls := make([]string, 0, len(store.queue))
	for _, queued := range store.queue {
		urls = append(urls, queued.URL)
	}
	assert.Equal(t, []string{"https://site.test/new"}, urls)
}

func TestProcessNextEntry_RecrawlIncrementsCount(t *testing.T) {
	body := "<html><body>same page</body></html>"
	store := newMemStore()
	entryURL := "https://site.test/p"

	p := newTestProcessor(store, successFetcher(body), &mockObjectStorage{}, nil)

	store.queue = append(store.queue, queueEntry(entryURL))
	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	first, err := store.Get(context.Background(), "site.test", "/p")
	require.NoError(t, err)
	require.NotNil(t, first)

	store.queue = append(store.queue, queueEntry(entryURL))
	_, err = p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	second, err := store.Get(context.Background(), "site.test", "/p")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, 1, first.CrawlCount)
	assert.Equal(t, 2, second.CrawlCount)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "created_at fixed at first write")
	assert.Equal(t, first.ContentHash, second.ContentHash)
	require.Len(t, store.pages, 1, "recrawl upserts the same row")
}

func TestProcessNextEntry_SearchIndexFailure(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	searchSvc := &mockSearchService{indexErr: fmt.Errorf("index unreachable")}
	p := newTestProcessor(store, successFetcher("<html><title>T</title></html>"), &mockObjectStorage{}, searchSvc)

	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	require.Len(t, store.errors, 1)
	assert.Equal(t, models.ErrorTypeSearchIndex, store.errors[0].ErrorType)
	// The page row was already written before indexing failed.
	assert.Len(t, store.pages, 1)
	assert.Len(t, store.queue, 1, "index failures are retryable")
}

func TestDocumentID_TenantScoped(t *testing.T) {
	store := newMemStore()
	store.queue = append(store.queue, queueEntry("https://site.test/p"))

	tenant := "tenant_a"
	searchSvc := &mockSearchService{}
	p := NewProcessor(store, successFetcher("<html>x</html>"), &mockObjectStorage{}, searchSvc, &tenant, time.Millisecond, common.GetLogger())

	_, err := p.ProcessNextEntry(context.Background())
	require.NoError(t, err)

	require.Len(t, searchSvc.docs, 1)
	sum := md5.Sum([]byte("tenant_a" + "https://site.test/p"))
	assert.Equal(t, hex.EncodeToString(sum[:]), searchSvc.docs[0].ID)
	require.NotNil(t, searchSvc.docs[0].TenantID)
	assert.Equal(t, tenant, *searchSvc.docs[0].TenantID)
}

func TestStartStop_DrainsBacklog(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 3; i++ {
		entry := queueEntry(fmt.Sprintf("https://site.test/p%d", i))
		entry.ScheduledAt = entry.ScheduledAt.Add(time.Duration(i) * time.Millisecond)
		store.queue = append(store.queue, entry)
	}

	p := newTestProcessor(store, successFetcher("<html>x</html>"), &mockObjectStorage{}, nil)
	p.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.pageCount() == 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	assert.Len(t, store.pages, 3, "backlog should drain without waiting for poll intervals")
}
