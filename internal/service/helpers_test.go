package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/samriddhi-college/chatbot-api/internal/catalog"
	"github.com/samriddhi-college/chatbot-api/internal/index"
	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	programs, err := catalog.Load()
	require.NoError(t, err)
	return programs
}

// stubDirectoryRepo implements repository.DirectoryRepository with canned
// data and call counters.
type stubDirectoryRepo struct {
	students []models.Student
	teachers []models.Teacher
	err      error

	nameCalls    int
	subjectCalls int
	listCalls    int
	countCalls   int
}

func (s *stubDirectoryRepo) FindStudentsByName(_ context.Context, name string) ([]models.Student, error) {
	s.nameCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Student
	for _, student := range s.students {
		if containsFold(student.Name, name) {
			out = append(out, student)
		}
	}
	return out, nil
}

func (s *stubDirectoryRepo) FindTeachersByName(_ context.Context, name string) ([]models.Teacher, error) {
	s.nameCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Teacher
	for _, teacher := range s.teachers {
		if containsFold(teacher.Name, name) {
			out = append(out, teacher)
		}
	}
	return out, nil
}

func (s *stubDirectoryRepo) FindTeachersBySubject(_ context.Context, subject string) ([]models.Teacher, error) {
	s.subjectCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Teacher
	for _, teacher := range s.teachers {
		if teacher.Subject != nil && containsFold(*teacher.Subject, subject) {
			out = append(out, teacher)
		}
	}
	return out, nil
}

func (s *stubDirectoryRepo) FindStudentByEmail(_ context.Context, email string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i, student := range s.students {
		if student.Email != nil && containsFold(*student.Email, email) {
			return &s.students[i], nil
		}
	}
	return nil, nil
}

func (s *stubDirectoryRepo) ListStudents(_ context.Context, filter repository.StudentFilter) ([]models.Student, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Student
	for _, student := range s.students {
		if filter.Program != "" && (student.Program == nil || !containsFold(*student.Program, filter.Program)) {
			continue
		}
		if filter.Batch != "" && (student.Batch == nil || *student.Batch != filter.Batch) {
			continue
		}
		out = append(out, student)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *stubDirectoryRepo) CountStudents(_ context.Context, filter repository.StudentFilter) (int64, error) {
	s.countCalls++
	if s.err != nil {
		return 0, s.err
	}
	students, _ := s.ListStudents(context.Background(), repository.StudentFilter{Program: filter.Program, Batch: filter.Batch})
	return int64(len(students)), nil
}

func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// stubSearcher implements index.Searcher, recording each query it receives.
type stubSearcher struct {
	passages []index.Passage
	err      error

	calls   int
	queries []string
	filters []map[string]string
}

func (s *stubSearcher) Query(_ context.Context, text string, _ int, filter map[string]string) ([]index.Passage, error) {
	s.calls++
	s.queries = append(s.queries, text)
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	return s.passages, nil
}

// stubGenerator implements ai.Generator.
type stubGenerator struct {
	answer string
	err    error

	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

// stubQueryLogRepo implements repository.QueryLogRepository.
type stubQueryLogRepo struct {
	entries []models.QueryLog
	err     error
}

func (s *stubQueryLogRepo) Create(_ context.Context, entry *models.QueryLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubQueryLogRepo) List(_ context.Context, _ repository.QueryLogFilter) ([]models.QueryLog, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.entries, int64(len(s.entries)), nil
}
