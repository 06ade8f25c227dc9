// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CandidateDocument is the shape indexed per candidate. CV text is indexed
// for full-text search but the stored record in PostgreSQL remains the
// source of truth.
type CandidateDocument struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	VacancyID        string `json:"vacancyId"`
	Status           string `json:"status"`
	AIScore          *int   `json:"aiScore,omitempty"`
	AIClassification string `json:"aiClassification,omitempty"`
	CVText           string `json:"cvText,omitempty"`
	UpdatedAt        string `json:"updatedAt"`
}

// Query describes one candidate search. Zero values mean "no filter".
type Query struct {
	Text           string
	VacancyID      string
	Status         string
	Classification string
	MinScore       int
	Size           int
}

// Indexer maintains the candidate search index. Indexing is best effort:
// callers on the write path log the returned error and move on.
type Indexer struct {
	esClient *elasticsearch.Client
	index    string
	enabled  bool
	logger   logger.Logger
}

func NewIndexer(esClient *elasticsearch.Client, index string, enabled bool, log logger.Logger) *Indexer {
	return &Indexer{
		esClient: esClient,
		index:    index,
		enabled:  enabled,
		logger:   log.WithFields(map[string]interface{}{"component": "search-indexer"}),
	}
}

func (i *Indexer) Enabled() bool {
	if i == nil {
		return false
	}
	return i.enabled && i.esClient != nil
}

// IndexCandidate writes or overwrites the candidate's document.
func (i *Indexer) IndexCandidate(ctx context.Context, c *models.Candidate) error {
	if !i.Enabled() {
		return nil
	}

	doc := CandidateDocument{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		VacancyID:        c.VacancyID,
		Status:           string(c.Status),
		AIScore:          c.AIScore,
		AIClassification: string(c.AIClassification),
		CVText:           c.CVText,
		UpdatedAt:        c.UpdatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal candidate document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: c.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.esClient)
	if err != nil {
		return fmt.Errorf("index candidate: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index candidate failed: %s", res.String())
	}
	return nil
}

// DeleteCandidate removes the candidate's document. Missing documents are
// not an error.
func (i *Indexer) DeleteCandidate(ctx context.Context, id string) error {
	if !i.Enabled() {
		return nil
	}

	req := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, i.esClient)
	if err != nil {
		return fmt.Errorf("delete candidate document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete candidate document failed: %s", res.String())
	}
	return nil
}

// Search runs a bool query over the candidate index.
func (i *Indexer) Search(ctx context.Context, q Query) ([]CandidateDocument, error) {
	if !i.Enabled() {
		return nil, apperrors.NewSearchQueryFailed("search index disabled")
	}

	var mustClauses []interface{}

	if q.Text != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name", "email", "cvText"},
			},
		})
	}
	if q.VacancyID != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{"vacancyId.keyword": q.VacancyID},
		})
	}
	if q.Status != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{"status.keyword": q.Status},
		})
	}
	if q.Classification != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{"aiClassification.keyword": q.Classification},
		})
	}
	if q.MinScore > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"aiScore": map[string]interface{}{"gte": q.MinScore},
			},
		})
	}

	size := q.Size
	if size <= 0 {
		size = 50
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": mustClauses},
		},
		"size": size,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, i.esClient)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailed(err.Error())
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailed(res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source CandidateDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchQueryFailed(err.Error())
	}

	var out []CandidateDocument
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}
