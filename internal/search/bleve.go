package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// batchSize bounds the number of documents per Rebuild batch
const batchSize = 500

// BleveIndex implements Index using Bleve
type BleveIndex struct {
	index  bleve.Index
	mu     sync.RWMutex
	logger *logger.Logger
}

// Open opens or creates the index at indexPath
func Open(indexPath string, log *logger.Logger) (*BleveIndex, error) {
	b := &BleveIndex{logger: log.WithComponent("bleve-index")}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err == nil {
		b.index = idx
		b.logger.Info("Opened existing search index", "path", indexPath)
		return b, nil
	}

	idx, err = bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	b.index = idx
	b.logger.Info("Created new search index", "path", indexPath)
	return b, nil
}

// OpenInMemory creates an index that lives only in memory
func OpenInMemory(log *logger.Logger) (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory index: %w", err)
	}
	return &BleveIndex{index: idx, logger: log.WithComponent("bleve-index")}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	articleMapping := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = store
		return fm
	}
	kw := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.IncludeInAll = false
		return fm
	}

	articleMapping.AddFieldMappingsAt("title", text(true))
	articleMapping.AddFieldMappingsAt("description", text(false))
	articleMapping.AddFieldMappingsAt("content", text(false))
	articleMapping.AddFieldMappingsAt("tags", text(true))

	// lower-cased copies so filters are case-insensitive
	articleMapping.AddFieldMappingsAt("tagKeys", kw())
	articleMapping.AddFieldMappingsAt("categoryKey", kw())
	articleMapping.AddFieldMappingsAt("author", kw())

	published := bleve.NewBooleanFieldMapping()
	published.IncludeInAll = false
	articleMapping.AddFieldMappingsAt("published", published)

	created := bleve.NewDateTimeFieldMapping()
	created.IncludeInAll = false
	articleMapping.AddFieldMappingsAt("createdAt", created)

	articleMapping.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	articleMapping.AddFieldMappingsAt("category", bleve.NewKeywordFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = articleMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// indexedDoc is a Document plus lower-cased filter keys
type indexedDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	TagKeys     []string  `json:"tagKeys"`
	CategoryKey string    `json:"categoryKey"`
}

func toIndexed(article *domain.Article) *indexedDoc {
	doc := ArticleToDocument(article)
	keys := make([]string, len(doc.Tags))
	for i, t := range doc.Tags {
		keys[i] = strings.ToLower(t)
	}
	return &indexedDoc{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Content:     doc.Content,
		Author:      doc.Author,
		Tags:        doc.Tags,
		Category:    doc.Category,
		Published:   doc.Published,
		CreatedAt:   doc.CreatedAt,
		TagKeys:     keys,
		CategoryKey: strings.ToLower(doc.Category),
	}
}

// Close closes the search index
func (b *BleveIndex) Close() error {
	if b.index == nil {
		return nil
	}
	if err := b.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	b.logger.Info("Closed search index")
	return nil
}

// IndexArticle indexes an article; bleve overwrites an existing id
func (b *BleveIndex) IndexArticle(_ context.Context, article *domain.Article) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.index.Index(article.ID, toIndexed(article)); err != nil {
		b.logger.Error("Failed to index article", "article_id", article.ID, "error", err)
		return fmt.Errorf("failed to index article: %w", err)
	}

	b.logger.Debug("Indexed article", "article_id", article.ID)
	return nil
}

// DeleteArticle removes an article from the index
func (b *BleveIndex) DeleteArticle(_ context.Context, articleID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.index.Delete(articleID); err != nil {
		b.logger.Error("Failed to delete article from index", "article_id", articleID, "error", err)
		return fmt.Errorf("failed to delete from index: %w", err)
	}
	return nil
}

// Rebuild replaces the content of the index with articles
func (b *BleveIndex) Rebuild(ctx context.Context, articles []*domain.Article) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// drop documents that no longer exist
	keep := make(map[string]bool, len(articles))
	for _, a := range articles {
		keep[a.ID] = true
	}
	indexed, err := b.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to get doc count: %w", err)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(indexed), 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list indexed documents: %w", err)
	}

	batch := b.index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to apply index batch: %w", err)
		}
		batch.Reset()
		return nil
	}

	for _, hit := range res.Hits {
		if !keep[hit.ID] {
			batch.Delete(hit.ID)
		}
	}
	for _, a := range articles {
		if err := batch.Index(a.ID, toIndexed(a)); err != nil {
			return fmt.Errorf("failed to batch article %s: %w", a.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	b.logger.Info("Rebuilt search index", "documents", len(articles))
	return nil
}

// Search searches the index
func (b *BleveIndex) Search(ctx context.Context, q *Query) (*Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	startTime := time.Now()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	req := bleve.NewSearchRequest(buildQuery(q))
	req.From = (q.Page - 1) * q.Limit
	req.Size = q.Limit
	if q.Keyword == "" {
		req.SortBy([]string{"-createdAt"})
	}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		b.logger.Error("Search failed", "error", err)
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}

	queryTime := time.Since(startTime).Milliseconds()
	b.logger.Debug("Search completed", "keyword", q.Keyword, "results", res.Total, "time_ms", queryTime)

	return &Result{
		IDs:       ids,
		Total:     int64(res.Total),
		Page:      q.Page,
		Limit:     q.Limit,
		QueryTime: queryTime,
	}, nil
}

func buildQuery(q *Query) query.Query {
	var must []query.Query

	if q.Keyword != "" {
		// match on analysed text plus prefix on the title for partial words
		match := bleve.NewMatchQuery(q.Keyword)
		match.SetOperator(query.MatchQueryOperatorAnd)
		prefix := bleve.NewPrefixQuery(strings.ToLower(q.Keyword))
		prefix.SetField("title")
		tag := bleve.NewTermQuery(strings.ToLower(q.Keyword))
		tag.SetField("tagKeys")
		must = append(must, bleve.NewDisjunctionQuery(match, prefix, tag))
	}

	if q.Author != "" {
		author := bleve.NewTermQuery(q.Author)
		author.SetField("author")
		must = append(must, author)
	}

	if q.Category != "" {
		category := bleve.NewTermQuery(strings.ToLower(q.Category))
		category.SetField("categoryKey")
		must = append(must, category)
	}

	if q.Tag != "" {
		tag := bleve.NewTermQuery(strings.ToLower(q.Tag))
		tag.SetField("tagKeys")
		must = append(must, tag)
	}

	if q.PublishedOnly {
		published := bleve.NewBoolFieldQuery(true)
		published.SetField("published")
		must = append(must, published)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

// Count returns the number of documents in the index
func (b *BleveIndex) Count() (uint64, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return count, nil
}
