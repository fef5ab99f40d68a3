package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/samriddhi-college/chatbot-api/internal/catalog"
	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/observability"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
)

const (
	answerCachePrefix = "chatbot:answers"
	defaultRetrieveK  = 10
	courseRetrieveK   = 15
	rosterLimit       = 50

	emptyQuestionMessage = "Please ask me a question about the college, its programs, students, or teachers."
	askWhoMessage        = "Please tell me whose information you need."
	specifyProgramMsg    = "Please specify which program (e.g., BCA, CSIT)."
)

// Question is one incoming request. It is immutable for the duration of the
// request and never persisted by the core.
type Question struct {
	Text          string
	Role          models.Role
	Caller        *models.Student
	CorrelationID string
}

// Result carries the answer plus routing facts the transport layer reports.
type Result struct {
	Answer string
	Intent Intent
	Denied bool
}

// queryEvent is the payload published for every completed request, consumed
// by the external reporting surface.
type queryEvent struct {
	ReferenceID   string    `json:"reference_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Role          string    `json:"role"`
	Intent        string    `json:"intent"`
	Denied        bool      `json:"denied"`
	LatencyMs     float64   `json:"latency_ms"`
	AskedAt       time.Time `json:"asked_at"`
}

// QueryService is the query classification and response routing engine: it
// checks access, classifies intent, dispatches to structured extractors, and
// falls back to the grounded generative path. Its outward contract never
// raises; every failure becomes a conversational apology.
type QueryService struct {
	policy      *AccessPolicy
	directory   *DirectoryService
	repo        repository.DirectoryRepository
	retrieval   *RetrievalService
	answers     *AnswerService
	programs    *catalog.Catalog
	logRepo     repository.QueryLogRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	events      *nats.Conn
	eventSubj   string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	retrieveK   int
}

// QueryServiceOptions groups the collaborators for construction. Cache and
// Events are optional; the service degrades gracefully without them.
type QueryServiceOptions struct {
	Policy       *AccessPolicy
	Directory    *DirectoryService
	Repo         repository.DirectoryRepository
	Retrieval    *RetrievalService
	Answers      *AnswerService
	Programs     *catalog.Catalog
	LogRepo      repository.QueryLogRepository
	Cache        *redis.Client
	CacheTTL     time.Duration
	Events       *nats.Conn
	EventSubject string
	RetrieveK    int
	Logger       zerolog.Logger
}

// NewQueryService wires the routing engine.
func NewQueryService(opts QueryServiceOptions) *QueryService {
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	retrieveK := opts.RetrieveK
	if retrieveK <= 0 {
		retrieveK = defaultRetrieveK
	}
	eventSubject := opts.EventSubject
	if eventSubject == "" {
		eventSubject = "chatbot.queries"
	}

	return &QueryService{
		policy:    opts.Policy,
		directory: opts.Directory,
		repo:      opts.Repo,
		retrieval: opts.Retrieval,
		answers:   opts.Answers,
		programs:  opts.Programs,
		logRepo:   opts.LogRepo,
		cache:     opts.Cache,
		cacheTTL:  cacheTTL,
		events:    opts.Events,
		eventSubj: eventSubject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    opts.Logger.With().Str("component", "query_service").Logger(),
		tracer:    otel.Tracer("github.com/samriddhi-college/chatbot-api/internal/service/query"),
		retrieveK: retrieveK,
	}
}

// GenerateResponse is the single entry point consumed by the transports. It
// always returns a string.
func (s *QueryService) GenerateResponse(ctx context.Context, question string, role models.Role, caller *models.Student) string {
	return s.Respond(ctx, Question{Text: question, Role: role, Caller: caller}).Answer
}

// Respond processes one question end to end.
func (s *QueryService) Respond(ctx context.Context, q Question) (result Result) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "query.respond", trace.WithAttributes(
		attribute.String("query.role", string(q.Role)),
	))
	defer span.End()

	// The request boundary: whatever goes wrong below, the caller gets a
	// sentence, not a stack trace.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("question", q.Text).Msg("query processing panicked")
			result = Result{Answer: notFoundMessage, Intent: IntentDocument}
		}
		s.record(ctx, q, result, time.Since(start))
	}()

	text := strings.TrimSpace(s.sanitizer.Sanitize(q.Text))
	if text == "" {
		return Result{Answer: emptyQuestionMessage, Intent: IntentDocument}
	}

	decision := s.policy.Check(ctx, text, q.Role, q.Caller)
	if !decision.Allowed {
		observability.AccessDenied().WithLabelValues(string(q.Role)).Inc()
		span.SetAttributes(attribute.Bool("query.denied", true))
		return Result{Answer: decision.Refusal, Denied: true, Intent: IntentDocument}
	}

	facts := newQuestionFacts(text)
	intent := classifyFacts(facts)
	observability.Queries().WithLabelValues(string(intent)).Inc()
	span.SetAttributes(attribute.String("query.intent", string(intent)))

	if cached, ok := s.cachedAnswer(ctx, q, intent, text); ok {
		return Result{Answer: cached, Intent: intent}
	}

	answer := s.dispatch(ctx, text, facts, intent, q)
	if answer == "" {
		answer = s.generateGrounded(ctx, text)
	}

	s.cacheAnswer(ctx, q, intent, text, answer)
	return Result{Answer: answer, Intent: intent}
}

// dispatch routes to the structured extractor for the intent. An empty
// return means "no deterministic answer, fall through to the generative
// path".
func (s *QueryService) dispatch(ctx context.Context, text string, facts questionFacts, intent Intent, q Question) string {
	switch intent {
	case IntentPerson:
		return s.handlePerson(ctx, text, facts, q.Caller)
	case IntentTeacherSubject:
		return s.handleTeacherSubject(ctx, text)
	case IntentProgramInfo:
		return s.handleProgramInfo(ctx, text)
	case IntentStudentList:
		return s.handleStudentList(ctx, text)
	case IntentStudentCount:
		return s.handleStudentCount(ctx, text)
	default:
		return ""
	}
}

func (s *QueryService) handlePerson(ctx context.Context, text string, facts questionFacts, caller *models.Student) string {
	var match *PersonMatch

	switch {
	case facts.personalPronoun() && caller != nil:
		match = &PersonMatch{Kind: PersonKindStudent, Student: caller}
	case facts.hasName:
		found, err := s.directory.SearchPerson(ctx, facts.name)
		if err != nil {
			s.logger.Warn().Err(err).Msg("person lookup failed")
			return notFoundMessage
		}
		if found == nil {
			return fmt.Sprintf("I couldn't find anyone named %s in our records.", titleCase(facts.name))
		}
		match = found
	default:
		return askWhoMessage
	}

	if sentence, ok := s.directory.AnswerField(text, match); ok {
		return sentence
	}
	return s.directory.Summary(match)
}

var teachesSubjectPattern = regexp.MustCompile(`(?i)\bwho\s+(?:teaches|is\s+teaching)\s+(.+)`)

func (s *QueryService) handleTeacherSubject(ctx context.Context, text string) string {
	match := teachesSubjectPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	subject := strings.TrimSpace(strings.Trim(match[1], "?!. "))
	subject = strings.TrimPrefix(subject, "the ")
	if subject == "" {
		return ""
	}

	teachers, err := s.repo.FindTeachersBySubject(ctx, subject)
	if err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("teacher subject lookup failed")
		return notFoundMessage
	}
	if len(teachers) == 0 {
		// No structured match; the curriculum documents may still know.
		return ""
	}

	teacher := teachers[0]
	if present(teacher.Designation) {
		return fmt.Sprintf("%s (%s) teaches %s.", teacher.Name, *teacher.Designation, titleCase(subject))
	}
	return fmt.Sprintf("%s teaches %s.", teacher.Name, titleCase(subject))
}

var courseListingPhrases = []string{
	"courses in semester", "list of courses", "course structure", "subjects in",
	"courses for", "list courses", "courses in",
}

func (s *QueryService) handleProgramInfo(ctx context.Context, text string) string {
	text = strings.ToLower(text)
	program, found := s.programs.Detect(text)

	if strings.Contains(text, "what programs") || strings.Contains(text, "which programs") {
		return s.listPrograms()
	}

	if containsAny(text, courseListingPhrases) {
		if !found {
			return specifyProgramMsg
		}
		return s.handleCourseListing(ctx, text, program)
	}

	if strings.Contains(text, "how many semesters") {
		if !found {
			return specifyProgramMsg
		}
		return fmt.Sprintf("The %s program runs for %s.", program.Name, program.Duration)
	}

	if strings.Contains(text, "offer") {
		if !found {
			return s.listPrograms()
		}
		if program.Offered {
			return fmt.Sprintf("Yes, we offer %s (%s). More info: %s", program.Name, program.Duration, program.Website)
		}
		return fmt.Sprintf("No, we don't currently offer %s.", strings.ToUpper(program.Key))
	}

	if found {
		switch {
		case strings.Contains(text, "duration") || strings.Contains(text, "how long"):
			return fmt.Sprintf("The %s program runs for %s.", program.Name, program.Duration)
		case strings.Contains(text, "seats") || strings.Contains(text, "intake"):
			return fmt.Sprintf("The %s program has %d seats.", program.Name, program.Seats)
		case strings.Contains(text, "affiliation") || strings.Contains(text, "affiliated"):
			return fmt.Sprintf("The %s program is affiliated with %s.", program.Name, program.Affiliation)
		case strings.Contains(text, "website"):
			return fmt.Sprintf("You can learn more about %s at %s", program.Name, program.Website)
		}
	}

	// Curriculum, eligibility, fees and the rest live in the documents.
	return ""
}

func (s *QueryService) handleCourseListing(ctx context.Context, text string, program catalog.Program) string {
	semester := semesterNumberFromQuestion(text)
	source := fmt.Sprintf("%s document", strings.ToUpper(program.Key))

	raw := s.retrieval.RetrieveRaw(ctx, fmt.Sprintf("Semester courses from %s", program.Name), program.Key, courseRetrieveK)

	rows := ExtractCourses(raw, semester)
	if len(rows) > 0 {
		return fmt.Sprintf("%s\n(Source: %s)", FormatCourseRows(program.Name, semester, rows), source)
	}

	// Table extraction came up empty; this is "extraction failed", not
	// "zero courses exist". Hand the raw context to the strict generative
	// fallback, which itself refuses on empty context.
	return s.answers.GenerateCourses(ctx, raw, program.Name, semester, source)
}

func (s *QueryService) handleStudentList(ctx context.Context, text string) string {
	filter := studentFilterFromQuestion(s.programs, text)
	filter.Limit = rosterLimit

	students, err := s.repo.ListStudents(ctx, filter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("student listing failed")
		return notFoundMessage
	}
	if len(students) == 0 {
		return "I couldn't find any students matching that."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d students:\n", len(students))
	for _, student := range students {
		fmt.Fprintf(&b, "- %s", student.Name)
		if present(student.Program) {
			fmt.Fprintf(&b, " (%s", *student.Program)
			if present(student.Batch) {
				fmt.Fprintf(&b, ", batch %s", *student.Batch)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *QueryService) handleStudentCount(ctx context.Context, text string) string {
	filter := studentFilterFromQuestion(s.programs, text)

	total, err := s.repo.CountStudents(ctx, filter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("student count failed")
		return notFoundMessage
	}

	if filter.Program != "" {
		program, _ := s.programs.Get(filter.Program)
		label := program.Name
		if label == "" {
			label = strings.ToUpper(filter.Program)
		}
		if filter.Batch != "" {
			return fmt.Sprintf("There are %d students in the %s program, batch %s.", total, label, filter.Batch)
		}
		return fmt.Sprintf("There are %d students in the %s program.", total, label)
	}
	return fmt.Sprintf("There are %d students enrolled at the college.", total)
}

func (s *QueryService) generateGrounded(ctx context.Context, text string) string {
	programKey := ""
	source := "college documents"
	if program, found := s.programs.Detect(text); found {
		programKey = program.Key
		source = fmt.Sprintf("%s document", strings.ToUpper(program.Key))
	}

	contextText := s.retrieval.Retrieve(ctx, text, programKey, s.retrieveK)
	return s.answers.Generate(ctx, text, contextText, source)
}

func (s *QueryService) listPrograms() string {
	var b strings.Builder
	b.WriteString("We offer the following programs:\n")
	for _, program := range s.programs.Programs() {
		if !program.Offered {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", program.Name, program.Duration)
	}
	return strings.TrimRight(b.String(), "\n")
}

var batchPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func studentFilterFromQuestion(programs *catalog.Catalog, text string) repository.StudentFilter {
	filter := repository.StudentFilter{}
	if program, found := programs.Detect(text); found {
		filter.Program = program.Key
	}
	if batch := batchPattern.FindString(text); batch != "" {
		filter.Batch = batch
	}
	return filter
}

// cachedAnswer serves repeat impersonal questions from redis. Personalised
// questions never hit the cache: their answers depend on who is asking.
func (s *QueryService) cachedAnswer(ctx context.Context, q Question, intent Intent, text string) (string, bool) {
	if !s.cacheable(q, intent) {
		return "", false
	}
	cached, err := s.cache.Get(ctx, s.cacheKey(q.Role, text)).Result()
	if err != nil {
		return "", false
	}
	return cached, true
}

func (s *QueryService) cacheAnswer(ctx context.Context, q Question, intent Intent, text, answer string) {
	if !s.cacheable(q, intent) || answer == "" || answer == notFoundMessage {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(q.Role, text), answer, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("failed to cache answer")
	}
}

func (s *QueryService) cacheable(q Question, intent Intent) bool {
	if s.cache == nil || q.Caller != nil {
		return false
	}
	return intent == IntentProgramInfo || intent == IntentDocument
}

func (s *QueryService) cacheKey(role models.Role, text string) string {
	sum := sha256.Sum256([]byte(string(role) + "|" + strings.ToLower(text)))
	return fmt.Sprintf("%s:%s", answerCachePrefix, hex.EncodeToString(sum[:]))
}

// record appends the completed request to the query log and publishes the
// reporting event. Both are best effort: a logging failure never changes the
// answer already produced.
func (s *QueryService) record(ctx context.Context, q Question, result Result, elapsed time.Duration) {
	referenceID := uuid.NewString()
	latencyMs := float64(elapsed) / float64(time.Millisecond)

	if s.logRepo != nil {
		metadata, _ := json.Marshal(map[string]interface{}{
			"question_chars": len(q.Text),
			"answer_chars":   len(result.Answer),
		})
		entry := models.QueryLog{
			ReferenceID:   referenceID,
			CorrelationID: q.CorrelationID,
			Role:          string(q.Role),
			Intent:        string(result.Intent),
			Question:      q.Text,
			Answer:        result.Answer,
			Denied:        result.Denied,
			LatencyMs:     latencyMs,
			Metadata:      datatypes.JSON(metadata),
		}
		if err := s.logRepo.Create(ctx, &entry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to append query log")
		}
	}

	if s.events != nil {
		event := queryEvent{
			ReferenceID:   referenceID,
			CorrelationID: q.CorrelationID,
			Role:          string(q.Role),
			Intent:        string(result.Intent),
			Denied:        result.Denied,
			LatencyMs:     latencyMs,
			AskedAt:       time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err == nil {
			if err := s.events.Publish(s.eventSubj, payload); err != nil {
				s.logger.Warn().Err(err).Msg("failed to publish query event")
			}
		}
	}
}

// titleCase uppercases the first letter of each name token for display.
func titleCase(name string) string {
	tokens := strings.Fields(name)
	for i, token := range tokens {
		tokens[i] = strings.ToUpper(token[:1]) + token[1:]
	}
	return strings.Join(tokens, " ")
}
