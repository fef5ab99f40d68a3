package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samriddhi-college/chatbot-api/internal/index"
	"github.com/samriddhi-college/chatbot-api/internal/models"
)

type queryFixture struct {
	repo      *stubDirectoryRepo
	searcher  *stubSearcher
	generator *stubGenerator
	logRepo   *stubQueryLogRepo
	svc       *QueryService
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()

	repo := &stubDirectoryRepo{
		students: []models.Student{
			{
				Name:    "Sita Gurung",
				Email:   strPtr("sita@samriddhi.edu.np"),
				Program: strPtr("CSIT"),
				Batch:   strPtr("2022"),
			},
			{
				Name:    "Ramesh Thapa",
				Program: strPtr("BCA"),
				Batch:   strPtr("2022"),
			},
		},
		teachers: []models.Teacher{
			{
				Name:        "Hari Prasad",
				Subject:     strPtr("Data Structures"),
				Designation: strPtr("Lecturer"),
			},
		},
	}
	searcher := &stubSearcher{}
	generator := &stubGenerator{answer: "Grounded answer."}
	logRepo := &stubQueryLogRepo{}

	directory := NewDirectoryService(repo, testLogger())
	svc := NewQueryService(QueryServiceOptions{
		Policy:    NewAccessPolicy(directory, testLogger()),
		Directory: directory,
		Repo:      repo,
		Retrieval: NewRetrievalService(searcher, testLogger()),
		Answers:   NewAnswerService(generator, time.Second, testLogger()),
		Programs:  mustCatalog(t),
		LogRepo:   logRepo,
		Logger:    testLogger(),
	})

	return &queryFixture{repo: repo, searcher: searcher, generator: generator, logRepo: logRepo, svc: svc}
}

func TestRespondGuestRefusal(t *testing.T) {
	f := newQueryFixture(t)

	result := f.svc.Respond(context.Background(), Question{
		Text: "email of Sita Gurung",
		Role: models.RoleGuest,
	})

	require.True(t, result.Denied)
	require.Equal(t, guestRefusalMessage, result.Answer)
	// a refused question must touch neither the index nor the model
	require.Zero(t, f.searcher.calls)
	require.Zero(t, f.generator.calls)
}

func TestRespondPersonField(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "email of Sita Gurung", models.RoleAdmin, nil)
	require.Equal(t, "You can reach Sita Gurung at sita@samriddhi.edu.np.", answer)
	require.Zero(t, f.generator.calls)
}

func TestRespondPersonSummary(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "Who is Sita Gurung?", models.RoleAdmin, nil)
	require.Contains(t, answer, "Sita Gurung is a student at the college.")
}

func TestRespondPersonNotFound(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "Who is Gopal Shrestha?", models.RoleAdmin, nil)
	require.Equal(t, "I couldn't find anyone named Gopal Shrestha in our records.", answer)
}

func TestRespondSelfLookup(t *testing.T) {
	f := newQueryFixture(t)
	caller := &models.Student{Name: "Ramesh Thapa", Batch: strPtr("2022")}

	answer := f.svc.GenerateResponse(context.Background(), "What is my batch?", models.RoleStudent, caller)
	require.Equal(t, "Ramesh Thapa belongs to the 2022 batch.", answer)
	require.Zero(t, f.repo.nameCalls, "self lookup must not search the directory")
}

func TestRespondTeacherSubject(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "Who teaches Data Structures?", models.RoleGuest, nil)
	require.Equal(t, "Hari Prasad (Lecturer) teaches Data Structures.", answer)
}

func TestRespondProgramInfoFromCatalog(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "How many semesters does CSIT have?", models.RoleGuest, nil)
	require.Contains(t, answer, "4 years (8 semesters)")
	// catalog facts are answered without touching the index or the model
	require.Zero(t, f.searcher.calls)
	require.Zero(t, f.generator.calls)
}

func TestRespondProgramListing(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "What programs do you offer?", models.RoleGuest, nil)
	require.Contains(t, answer, "Bachelor of Science in Computer Science and IT")
	require.Contains(t, answer, "Bachelor of Computer Applications")
	require.Contains(t, answer, "Bachelor of Social Work")
	require.Contains(t, answer, "Bachelor of Business Studies")
}

func TestRespondCourseListingNeedsProgram(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "list courses in semester 3", models.RoleGuest, nil)
	require.Equal(t, specifyProgramMsg, answer)
}

func TestRespondCourseListingExtractsTable(t *testing.T) {
	f := newQueryFixture(t)
	f.searcher.passages = []index.Passage{{Text: "Semester 3\n| CSC206 | Object Oriented Programming | 3 | 100 |"}}

	answer := f.svc.GenerateResponse(context.Background(), "list courses in semester 3 for BCA", models.RoleGuest, nil)
	require.Contains(t, answer, "- Object Oriented Programming (CSC206): 3 credits")
	require.Contains(t, answer, "(Source: BCA document)")
	require.Zero(t, f.generator.calls, "a clean table extraction needs no model call")
}

func TestRespondCourseListingEmptyContextRefuses(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "list courses in semester 3 for BCA", models.RoleGuest, nil)
	require.Equal(t, notFoundMessage, answer)
	require.Zero(t, f.generator.calls)
}

func TestRespondStudentList(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "list students in BCA batch 2022", models.RoleAdmin, nil)
	require.Contains(t, answer, "I found 1 students")
	require.Contains(t, answer, "Ramesh Thapa (BCA, batch 2022)")
}

func TestRespondStudentCount(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "How many students are enrolled?", models.RoleGuest, nil)
	require.Equal(t, "There are 2 students enrolled at the college.", answer)
}

func TestRespondDocumentFallback(t *testing.T) {
	f := newQueryFixture(t)
	f.searcher.passages = []index.Passage{{Text: "Samriddhi College was founded in 2007 in Lokanthali, Bhaktapur."}}

	answer := f.svc.GenerateResponse(context.Background(), "When was the college founded?", models.RoleGuest, nil)
	require.Equal(t, "Grounded answer.\n(Source: college documents)", answer)
	require.Equal(t, 1, f.generator.calls)
}

func TestRespondEmptyRetrievalRefusesWithoutModel(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "When was the college founded?", models.RoleGuest, nil)
	require.Equal(t, notFoundMessage, answer)
	require.Zero(t, f.generator.calls)
}

func TestRespondEmptyQuestion(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(), "   ", models.RoleGuest, nil)
	require.Equal(t, emptyQuestionMessage, answer)
}

func TestRespondSanitizesMarkup(t *testing.T) {
	f := newQueryFixture(t)

	answer := f.svc.GenerateResponse(context.Background(),
		"<script>alert(1)</script>Who teaches Data Structures?", models.RoleGuest, nil)
	require.Equal(t, "Hari Prasad (Lecturer) teaches Data Structures.", answer)
}

func TestRespondDirectoryFailureApologizes(t *testing.T) {
	f := newQueryFixture(t)
	f.repo.err = errors.New("database exploded")

	answer := f.svc.GenerateResponse(context.Background(), "email of Sita Gurung", models.RoleAdmin, nil)
	require.Equal(t, notFoundMessage, answer)
}

func TestRespondAppendsQueryLog(t *testing.T) {
	f := newQueryFixture(t)

	result := f.svc.Respond(context.Background(), Question{
		Text:          "Who teaches Data Structures?",
		Role:          models.RoleGuest,
		CorrelationID: "corr-123",
	})
	require.Equal(t, IntentTeacherSubject, result.Intent)

	require.Len(t, f.logRepo.entries, 1)
	entry := f.logRepo.entries[0]
	require.Equal(t, string(IntentTeacherSubject), entry.Intent)
	require.Equal(t, string(models.RoleGuest), entry.Role)
	require.Equal(t, "corr-123", entry.CorrelationID)
	require.False(t, entry.Denied)
	require.NotEmpty(t, entry.ReferenceID)
}
