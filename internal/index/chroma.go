// Package index talks to the external document index. The chatbot core treats
// the index as an opaque collaborator: it sends a query and receives ranked
// text passages with metadata, nothing more.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Passage is one retrieved chunk of document text.
type Passage struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

// Searcher is the retrieval contract consumed by the core.
type Searcher interface {
	Query(ctx context.Context, text string, k int, filter map[string]string) ([]Passage, error)
}

// ChromaConfig configures the REST client.
type ChromaConfig struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// ChromaClient is a minimal REST client to a Chroma server. The server owns
// embedding and similarity ranking; every call here is a fresh query.
type ChromaClient struct {
	url        string
	collection string
	client     *http.Client
	logger     zerolog.Logger
}

// NewChromaClient builds a Chroma REST client with a bounded request timeout.
func NewChromaClient(cfg ChromaConfig, logger zerolog.Logger) (*ChromaClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("chroma url must not be empty")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("chroma collection must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &ChromaClient{
		url:        cfg.URL,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "chroma_client").Logger(),
	}, nil
}

type chromaQueryRequest struct {
	QueryTexts []string          `json:"query_texts"`
	NResults   int               `json:"n_results"`
	Where      map[string]string `json:"where,omitempty"`
	Include    []string          `json:"include"`
}

type chromaQueryResponse struct {
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

// Query runs a similarity search, optionally constrained by a metadata filter.
func (c *ChromaClient) Query(ctx context.Context, text string, k int, filter map[string]string) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}

	payload := chromaQueryRequest{
		QueryTexts: []string{text},
		NResults:   k,
		Where:      filter,
		Include:    []string{"documents", "metadatas", "distances"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode chroma query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/collections/%s/query", c.url, c.collection)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chroma request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("chroma query status %d: %s", response.StatusCode, string(raw))
	}

	var decoded chromaQueryResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chroma response: %w", err)
	}

	if len(decoded.Documents) == 0 {
		return nil, nil
	}

	documents := decoded.Documents[0]
	passages := make([]Passage, 0, len(documents))
	for i, doc := range documents {
		passage := Passage{Text: doc, Metadata: map[string]string{}}
		if len(decoded.Metadatas) > 0 && i < len(decoded.Metadatas[0]) {
			for key, value := range decoded.Metadatas[0][i] {
				passage.Metadata[key] = fmt.Sprint(value)
			}
		}
		if len(decoded.Distances) > 0 && i < len(decoded.Distances[0]) {
			// Chroma reports distance; smaller is closer.
			passage.Score = 1 - decoded.Distances[0][i]
		}
		passages = append(passages, passage)
	}

	return passages, nil
}
