package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
)

// PersonKind distinguishes the two record types in the directory.
type PersonKind string

// Directory record kinds.
const (
	PersonKindStudent PersonKind = "student"
	PersonKindTeacher PersonKind = "teacher"
)

// PersonMatch is a resolved directory record.
type PersonMatch struct {
	Kind    PersonKind
	Student *models.Student
	Teacher *models.Teacher
}

// Name returns the display name of the matched record.
func (m *PersonMatch) Name() string {
	if m.Kind == PersonKindTeacher && m.Teacher != nil {
		return m.Teacher.Name
	}
	if m.Student != nil {
		return m.Student.Name
	}
	return ""
}

// DirectoryService performs fuzzy person lookup and field-level formatting
// over partial records. Every formatting path is total: a missing attribute
// renders as an "I don't have ..." sentence, never an error.
type DirectoryService struct {
	repo   repository.DirectoryRepository
	logger zerolog.Logger
}

// NewDirectoryService constructs the directory lookup service.
func NewDirectoryService(repo repository.DirectoryRepository, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		logger: logger.With().Str("component", "directory_service").Logger(),
	}
}

// SearchPerson resolves a name to a record, students first then teachers.
// Names shorter than two characters are rejected outright. A nil result with
// nil error means nobody matched.
func (s *DirectoryService) SearchPerson(ctx context.Context, name string) (*PersonMatch, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return nil, nil
	}

	students, err := s.repo.FindStudentsByName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	if len(students) > 0 {
		student := students[0]
		return &PersonMatch{Kind: PersonKindStudent, Student: &student}, nil
	}

	teachers, err := s.repo.FindTeachersByName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("search teachers: %w", err)
	}
	if len(teachers) > 0 {
		teacher := teachers[0]
		return &PersonMatch{Kind: PersonKindTeacher, Teacher: &teacher}, nil
	}

	return nil, nil
}

// fieldAnswer pairs the question keywords that select a field with the
// sentence builder reporting it.
type fieldAnswer struct {
	keywords []string
	answer   func(m *PersonMatch, question string) string
}

// studentFieldAnswers is checked in order; the first keyword hit wins.
var studentFieldAnswers = []fieldAnswer{
	{[]string{"email"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "an email address", m.Student.Email, "You can reach %s at %s.")
	}},
	{[]string{"phone", "contact"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a phone number", m.Student.Phone, "%s's phone number is %s.")
	}},
	{[]string{"roll"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a roll number", m.Student.RollNo, "%s's roll number is %s.")
	}},
	{[]string{"symbol"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a symbol number", m.Student.SymbolNo, "%s's symbol number is %s.")
	}},
	{[]string{"registration"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a registration number", m.Student.RegistrationNo, "%s's registration number is %s.")
	}},
	{[]string{"date of birth", "dob", "birthday"}, func(m *PersonMatch, question string) string {
		if strings.Contains(question, " bs") || strings.Contains(question, "bikram") {
			return reachField(m.Name(), "a date of birth (BS)", m.Student.DOBBS, "%s was born on %s (BS).")
		}
		return reachField(m.Name(), "a date of birth", m.Student.DOBAD, "%s was born on %s.")
	}},
	{[]string{"gender"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "gender information", m.Student.Gender, "%s's recorded gender is %s.")
	}},
	{[]string{"address"}, func(m *PersonMatch, question string) string {
		if strings.Contains(question, "temp") {
			return reachField(m.Name(), "a temporary address", m.Student.TempAddress, "%s's temporary address is %s.")
		}
		return reachField(m.Name(), "a permanent address", m.Student.PermAddress, "%s's permanent address is %s.")
	}},
	{[]string{"batch"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "batch information", m.Student.Batch, "%s belongs to the %s batch.")
	}},
	{[]string{"section"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "section information", m.Student.Section, "%s is in section %s.")
	}},
	{[]string{"semester", "year"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "year/semester information", m.Student.YearSemester, "%s is currently in %s.")
	}},
	{[]string{"program"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "program information", m.Student.Program, "%s studies %s.")
	}},
	{[]string{"joined", "admission"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a joined date", m.Student.JoinedDate, "%s joined the college on %s.")
	}},
	{[]string{"cgpa"}, func(m *PersonMatch, _ string) string {
		return reachNumber(m.Name(), "CGPA information", m.Student.CGPA, "%s's CGPA is %.2f.")
	}},
	{[]string{"gpa"}, func(m *PersonMatch, _ string) string {
		return reachNumber(m.Name(), "GPA information", m.Student.GPA, "%s's GPA is %.2f.")
	}},
	{[]string{"attendance"}, func(m *PersonMatch, _ string) string {
		return reachNumber(m.Name(), "attendance information", m.Student.AttendancePercentage, "%s's attendance is %.1f%%.")
	}},
	{[]string{"academic status", "standing"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "academic status information", m.Student.AcademicStatus, "%s's academic status is %s.")
	}},
	{[]string{"credit"}, func(m *PersonMatch, _ string) string {
		if m.Student.TotalCreditsEarned == nil {
			return unavailable(m.Name(), "credit information")
		}
		if m.Student.CreditsRemaining != nil {
			return fmt.Sprintf("%s has earned %d credits with %d remaining.",
				m.Name(), *m.Student.TotalCreditsEarned, *m.Student.CreditsRemaining)
		}
		return fmt.Sprintf("%s has earned %d credits.", m.Name(), *m.Student.TotalCreditsEarned)
	}},
}

var teacherFieldAnswers = []fieldAnswer{
	{[]string{"email"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "an email address", m.Teacher.Email, "You can reach %s at %s.")
	}},
	{[]string{"phone", "contact"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "a phone number", m.Teacher.Phone, "%s's phone number is %s.")
	}},
	{[]string{"address"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "an address", m.Teacher.Address, "%s's address is %s.")
	}},
	{[]string{"subject", "teach"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "subject information", m.Teacher.Subject, "%s teaches %s.")
	}},
	{[]string{"designation", "position"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "designation information", m.Teacher.Designation, "%s serves as %s.")
	}},
	{[]string{"degree", "qualification"}, func(m *PersonMatch, _ string) string {
		return reachField(m.Name(), "degree information", m.Teacher.Degree, "%s holds a %s.")
	}},
}

// AnswerField inspects the question for a field-indicating keyword and
// returns a single sentence for that field. An empty result means no field
// keyword matched and the caller should fall back to a full summary.
func (s *DirectoryService) AnswerField(question string, match *PersonMatch) (string, bool) {
	lower := strings.ToLower(question)

	answers := studentFieldAnswers
	if match.Kind == PersonKindTeacher {
		answers = teacherFieldAnswers
	}

	for _, field := range answers {
		for _, keyword := range field.keywords {
			if strings.Contains(lower, keyword) {
				return field.answer(match, lower), true
			}
		}
	}
	return "", false
}

// Summary renders the full record as a short profile.
func (s *DirectoryService) Summary(match *PersonMatch) string {
	var b strings.Builder
	if match.Kind == PersonKindTeacher {
		t := match.Teacher
		fmt.Fprintf(&b, "%s is a teacher at the college.\n", t.Name)
		fmt.Fprintf(&b, "- Designation: %s\n", textOrUnavailable(t.Designation))
		fmt.Fprintf(&b, "- Subject: %s\n", textOrUnavailable(t.Subject))
		fmt.Fprintf(&b, "- Degree: %s\n", textOrUnavailable(t.Degree))
		fmt.Fprintf(&b, "- Email: %s", textOrUnavailable(t.Email))
		return b.String()
	}

	st := match.Student
	fmt.Fprintf(&b, "%s is a student at the college.\n", st.Name)
	fmt.Fprintf(&b, "- Program: %s\n", textOrUnavailable(st.Program))
	fmt.Fprintf(&b, "- Batch: %s\n", textOrUnavailable(st.Batch))
	fmt.Fprintf(&b, "- Section: %s\n", textOrUnavailable(st.Section))
	fmt.Fprintf(&b, "- Year/Semester: %s\n", textOrUnavailable(st.YearSemester))
	fmt.Fprintf(&b, "- Roll No: %s\n", textOrUnavailable(st.RollNo))
	fmt.Fprintf(&b, "- Email: %s", textOrUnavailable(st.Email))
	return b.String()
}

// reachField renders sentence with the field value, or the fixed unavailable
// sentence when the field is missing or a sentinel.
func reachField(name, label string, value *string, sentence string) string {
	if !present(value) {
		return unavailable(name, label)
	}
	return fmt.Sprintf(sentence, name, strings.TrimSpace(*value))
}

func reachNumber(name, label string, value *float64, sentence string) string {
	if value == nil {
		return unavailable(name, label)
	}
	return fmt.Sprintf(sentence, name, *value)
}

func unavailable(name, label string) string {
	return fmt.Sprintf("I don't have %s for %s.", label, name)
}

// present reports whether an optional field carries a usable value. Imports
// sometimes leave literal "N/A" strings behind; those count as missing.
func present(value *string) bool {
	if value == nil {
		return false
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return false
	}
	switch strings.ToLower(trimmed) {
	case "n/a", "na", "none", "nil", "-":
		return false
	}
	return true
}

func textOrUnavailable(value *string) string {
	if !present(value) {
		return "not available"
	}
	return strings.TrimSpace(*value)
}
