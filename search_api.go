package skybrief

import (
	"context"
	"fmt"
)

// SearchAPI manages search indexes and document ingestion.
type SearchAPI struct {
	cfg        Config
	httpClient *httpClient
}

func newSearchAPI(cfg Config, httpClient *httpClient) *SearchAPI {
	return &SearchAPI{cfg: cfg, httpClient: httpClient}
}

// CreateIndex creates a search index. Creating an index that already exists
// is not an error; the existing index is returned.
func (s *SearchAPI) CreateIndex(name string) (SearchIndex, error) {
	return s.CreateIndexWithContext(context.Background(), name)
}

// CreateIndexWithContext creates a search index with a caller-supplied context.
func (s *SearchAPI) CreateIndexWithContext(ctx context.Context, name string) (SearchIndex, error) {
	if name == "" {
		return SearchIndex{}, fmt.Errorf("index name cannot be empty")
	}
	payload := map[string]any{"name": name}
	var resp SearchIndex
	if err := s.httpClient.postJSONWithContext(ctx, "/v1/search/indexes/", payload, nil, &resp); err != nil {
		return SearchIndex{}, fmt.Errorf("create index %s: %w", name, err)
	}
	return resp, nil
}

// DeleteIndex removes a search index and all its documents.
func (s *SearchAPI) DeleteIndex(name string) error {
	return s.DeleteIndexWithContext(context.Background(), name)
}

// DeleteIndexWithContext removes an index with a caller-supplied context.
func (s *SearchAPI) DeleteIndexWithContext(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("index name cannot be empty")
	}
	if err := s.httpClient.deleteWithContext(ctx, fmt.Sprintf("/v1/search/indexes/%s/", name), nil); err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	return nil
}

// UploadDocument ingests a single document into an index.
func (s *SearchAPI) UploadDocument(indexName string, doc DocumentUpload) (DocumentIngestResult, error) {
	return s.UploadDocumentWithContext(context.Background(), indexName, doc)
}

// UploadDocumentWithContext ingests a document with a caller-supplied context.
func (s *SearchAPI) UploadDocumentWithContext(ctx context.Context, indexName string, doc DocumentUpload) (DocumentIngestResult, error) {
	if indexName == "" {
		return DocumentIngestResult{}, fmt.Errorf("index name cannot be empty")
	}
	fields := map[string]string{"index": indexName}
	var resp DocumentIngestResult
	if err := s.httpClient.postDocumentWithContext(ctx, fmt.Sprintf("/v1/search/indexes/%s/documents/", indexName), doc, fields, &resp); err != nil {
		return DocumentIngestResult{}, fmt.Errorf("upload document %s: %w", doc.filename(), err)
	}
	return resp, nil
}

// RunIndexer kicks off the indexer for an index.
func (s *SearchAPI) RunIndexer(indexName string) (IndexerStatus, error) {
	return s.RunIndexerWithContext(context.Background(), indexName)
}

// RunIndexerWithContext kicks off the indexer with a caller-supplied context.
func (s *SearchAPI) RunIndexerWithContext(ctx context.Context, indexName string) (IndexerStatus, error) {
	if indexName == "" {
		return IndexerStatus{}, fmt.Errorf("index name cannot be empty")
	}
	var resp IndexerStatus
	if err := s.httpClient.postJSONWithContext(ctx, fmt.Sprintf("/v1/search/indexes/%s/indexer/run/", indexName), nil, nil, &resp); err != nil {
		return IndexerStatus{}, fmt.Errorf("run indexer for %s: %w", indexName, err)
	}
	return resp, nil
}

// IndexerStatus reports the current indexer state for an index.
func (s *SearchAPI) IndexerStatus(indexName string) (IndexerStatus, error) {
	return s.IndexerStatusWithContext(context.Background(), indexName)
}

// IndexerStatusWithContext reports indexer state with a caller-supplied context.
func (s *SearchAPI) IndexerStatusWithContext(ctx context.Context, indexName string) (IndexerStatus, error) {
	if indexName == "" {
		return IndexerStatus{}, fmt.Errorf("index name cannot be empty")
	}
	var resp IndexerStatus
	if err := s.httpClient.getWithContext(ctx, fmt.Sprintf("/v1/search/indexes/%s/indexer/", indexName), nil, &resp); err != nil {
		return IndexerStatus{}, fmt.Errorf("indexer status for %s: %w", indexName, err)
	}
	return resp, nil
}
