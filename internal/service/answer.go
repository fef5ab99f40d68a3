package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samriddhi-college/chatbot-api/internal/observability"
	"github.com/samriddhi-college/chatbot-api/pkg/ai"
)

// notFoundMessage is the fixed refusal used whenever grounding is missing or
// a collaborator fails. A chatbot apologises; it never raises.
const notFoundMessage = "I couldn't find that information in the college documents. Could you try rephrasing your question?"

// minContextLength is the grounding threshold below which the model is never
// called.
const minContextLength = 10

// AnswerService composes a strict context-only prompt and delegates to the
// external generative model.
type AnswerService struct {
	generator ai.Generator
	timeout   time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAnswerService constructs the grounded answer generator. The timeout
// bounds each model call; a timed-out call collapses to the refusal message.
func NewAnswerService(generator ai.Generator, timeout time.Duration, logger zerolog.Logger) *AnswerService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnswerService{
		generator: generator,
		timeout:   timeout,
		logger:    logger.With().Str("component", "answer_service").Logger(),
		tracer:    otel.Tracer("github.com/samriddhi-college/chatbot-api/internal/service/answer"),
	}
}

// Generate produces a grounded answer, or the fixed refusal when the context
// cannot support one. The source label feeds the attribution line.
func (s *AnswerService) Generate(ctx context.Context, question, contextText, source string) string {
	ctx, span := s.tracer.Start(ctx, "answer.generate")
	defer span.End()

	if len(strings.TrimSpace(contextText)) < minContextLength {
		observability.GroundingMisses().Inc()
		return notFoundMessage
	}

	prompt := buildGroundedPrompt(question, contextText)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.generator.Generate(callCtx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.Warn().Err(err).Msg("generative model call failed")
		return notFoundMessage
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return notFoundMessage
	}

	if source == "" {
		source = "college documents"
	}
	return fmt.Sprintf("%s\n(Source: %s)", answer, source)
}

// GenerateCourses is the strict fallback when direct table extraction found
// nothing but retrieval produced context: the model may only list courses
// that literally appear in the context.
func (s *AnswerService) GenerateCourses(ctx context.Context, contextText, programName, semester, source string) string {
	ctx, span := s.tracer.Start(ctx, "answer.generate_courses")
	defer span.End()

	if len(strings.TrimSpace(contextText)) < minContextLength {
		observability.GroundingMisses().Inc()
		return notFoundMessage
	}

	prompt := buildCoursePrompt(contextText, programName, semester)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.generator.Generate(callCtx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.Warn().Err(err).Msg("course generation call failed")
		return notFoundMessage
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return notFoundMessage
	}
	return fmt.Sprintf("%s\n(Source: %s)", answer, source)
}

func buildGroundedPrompt(question, contextText string) string {
	var b strings.Builder
	b.WriteString("Answer this question using ONLY the context below.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. Be factual and concise, in a natural conversational tone.\n")
	b.WriteString("2. Never invent information that is not in the context.\n")
	b.WriteString("3. If the context does not contain the answer, say \"Information not available in documents\".\n")
	return b.String()
}

func buildCoursePrompt(contextText, programName, semester string) string {
	var b strings.Builder
	b.WriteString("EXTRACT, DON'T CREATE. List courses EXACTLY as shown in this context:\n\n")
	b.WriteString(contextText)
	b.WriteString(fmt.Sprintf("\n\nFor Semester %s of %s.\n\n", semester, programName))
	b.WriteString("Rules:\n")
	b.WriteString("1. Use ONLY the course names and codes from the context.\n")
	b.WriteString("2. NEVER invent new courses.\n")
	b.WriteString("3. Format each line as: - Course Name (CODE): Credits\n")
	b.WriteString("4. If no courses are found, say \"Course information not available\".\n")
	return b.String()
}
