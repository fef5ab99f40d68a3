package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samriddhi-college/chatbot-api/internal/index"
	"github.com/samriddhi-college/chatbot-api/internal/observability"
)

// institutionalTerms trigger the widened third retrieval strategy.
var institutionalTerms = []string{"college", "principal", "director", "chairman"}

// RetrievalService queries the document index and produces a cleaned,
// de-tabularized text context for grounding.
type RetrievalService struct {
	searcher index.Searcher
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewRetrievalService constructs the retrieval adapter.
func NewRetrievalService(searcher index.Searcher, logger zerolog.Logger) *RetrievalService {
	return &RetrievalService{
		searcher: searcher,
		logger:   logger.With().Str("component", "retrieval_service").Logger(),
		tracer:   otel.Tracer("github.com/samriddhi-college/chatbot-api/internal/service/retrieval"),
	}
}

// Retrieve runs up to three strategies, stopping at the first non-empty
// result: program-filtered, unfiltered, then a widened query on any
// institutional term the question mentions. An empty return means
// "insufficient grounding"; callers must never fabricate from it.
func (s *RetrievalService) Retrieve(ctx context.Context, question, programKey string, k int) string {
	ctx, span := s.tracer.Start(ctx, "retrieval.retrieve", trace.WithAttributes(
		attribute.String("retrieval.program", programKey),
		attribute.Int("retrieval.k", k),
	))
	defer span.End()

	if programKey != "" {
		if text := s.query(ctx, question, k, map[string]string{"program": programKey}); text != "" {
			return text
		}
	}

	if text := s.query(ctx, question, k, nil); text != "" {
		return text
	}

	lower := strings.ToLower(question)
	for _, term := range institutionalTerms {
		if strings.Contains(lower, term) {
			if text := s.query(ctx, term, k, nil); text != "" {
				return text
			}
			break
		}
	}

	return ""
}

// RetrieveRaw returns the concatenated passages without reformatting, used by
// the course table extractor which needs intact pipe rows.
func (s *RetrievalService) RetrieveRaw(ctx context.Context, question, programKey string, k int) string {
	var filter map[string]string
	if programKey != "" {
		filter = map[string]string{"program": programKey}
	}

	passages, err := s.searcher.Query(ctx, question, k, filter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("raw retrieval failed")
		observability.RetrievalFailures().Inc()
		return ""
	}
	return joinPassages(passages)
}

func (s *RetrievalService) query(ctx context.Context, question string, k int, filter map[string]string) string {
	passages, err := s.searcher.Query(ctx, question, k, filter)
	if err != nil {
		s.logger.Warn().Err(err).Fields(map[string]interface{}{"filter": filter}).Msg("retrieval failed")
		observability.RetrievalFailures().Inc()
		return ""
	}
	if len(passages) == 0 {
		return ""
	}
	return reformatTables(joinPassages(passages))
}

func joinPassages(passages []index.Passage) string {
	texts := make([]string, 0, len(passages))
	for _, passage := range passages {
		if trimmed := strings.TrimSpace(passage.Text); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	return strings.Join(texts, "\n\n")
}

// reformatTables converts pipe-delimited table rows into bullets the model
// reads more reliably, preserving non-tabular lines verbatim.
func reformatTables(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if !strings.Contains(line, "|") {
			out = append(out, line)
			continue
		}

		row, ok := parseCourseLine(line)
		if !ok {
			// Header and separator rows add noise; semester headers stay.
			if semesterHeaderPattern.MatchString(line) {
				out = append(out, strings.Trim(strings.TrimSpace(line), "|# "))
			}
			continue
		}
		out = append(out, fmt.Sprintf("• %s (Code: %s, Credits: %s)", row.Name, row.Code, row.Credits))
	}

	return strings.Join(out, "\n")
}
