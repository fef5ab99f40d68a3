package service

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a question. It drives which handler
// produces the response.
type Intent string

// The closed set of intents. Classification is total: every question maps to
// exactly one intent, defaulting to IntentDocument.
const (
	IntentPerson         Intent = "person"
	IntentTeacherSubject Intent = "teacher_subject"
	IntentProgramInfo    Intent = "program_info"
	IntentStudentList    Intent = "student_list"
	IntentStudentCount   Intent = "student_count"
	IntentDocument       Intent = "document"
)

// institutionalRoles are officeholder terms treated as public document facts
// rather than personal records.
var institutionalRoles = []string{
	"principal",
	"vice principal",
	"director",
	"chairman",
	"chairperson",
	"dean",
	"registrar",
	"founder",
	"coordinator",
	"head of department",
	"hod",
}

// restrictedFieldTokens mark a question as touching personal record fields.
// Performance fields are included: gpa and attendance are as private as a
// phone number.
var restrictedFieldTokens = []string{
	"email",
	"phone",
	"contact",
	"address",
	"roll number",
	"roll no",
	"symbol number",
	"symbol no",
	"registration number",
	"registration no",
	"date of birth",
	"dob",
	"birthday",
	"gender",
	"batch",
	"section",
	"joined",
	"admission date",
	"gpa",
	"cgpa",
	"attendance",
	"marks",
	"grades",
	"academic status",
	"credits earned",
	"credits remaining",
}

// contactFieldTokens are the subset that stays restricted even for
// institutional role queries.
var contactFieldTokens = []string{"email", "phone", "contact", "address"}

// personQueryPhrases signal an explicit ask about a specific person.
var personQueryPhrases = []string{
	"who is",
	"tell me about",
	"details about",
	"details of",
	"information about",
	"info about",
}

// programAttributeTokens route a question to program information.
var programAttributeTokens = []string{
	"duration",
	"semester",
	"semesters",
	"course",
	"courses",
	"subjects",
	"curriculum",
	"syllabus",
	"seats",
	"intake",
	"admission",
	"eligibility",
	"credit",
	"career",
	"faculty",
	"facilities",
	"affiliation",
	"offer",
	"fee",
	"fees",
	"scholarship",
}

var (
	pronounPattern      = regexp.MustCompile(`\b(my|me|mine|i|myself)\b`)
	teachesPattern      = regexp.MustCompile(`\bwho\s+(teaches|is\s+teaching)\b`)
	studentListPattern  = regexp.MustCompile(`\b(list|show|all)\b.*\bstudents\b|\bstudents\s+(in|of|from)\b`)
	studentCountPattern = regexp.MustCompile(`\b(how\s+many|number\s+of|total)\s+students\b`)
)

// questionFacts caches per-question predicates so the rule chain evaluates
// each one once.
type questionFacts struct {
	lower   string
	name    string
	hasName bool
}

func newQuestionFacts(question string) questionFacts {
	name, hasName := ExtractName(question)
	return questionFacts{
		lower:   strings.ToLower(question),
		name:    name,
		hasName: hasName,
	}
}

func (f questionFacts) institutionalRole() bool {
	return containsAny(f.lower, institutionalRoles)
}

func (f questionFacts) personalPronoun() bool {
	return pronounPattern.MatchString(f.lower)
}

func (f questionFacts) restrictedField() bool {
	return containsAny(f.lower, restrictedFieldTokens)
}

func (f questionFacts) contactField() bool {
	return containsAny(f.lower, contactFieldTokens)
}

func (f questionFacts) personQueryPhrase() bool {
	return containsAny(f.lower, personQueryPhrases)
}

// intentRule pairs a predicate with the intent it selects.
type intentRule struct {
	name   string
	match  func(questionFacts) bool
	intent Intent
}

// intentRules is the ordered dispatch table; the first matching rule wins.
//
//	#  rule                       intent
//	1  institutional role         document
//	2  personal pronoun           person
//	3  who teaches <subject>      teacher_subject
//	4  restricted field keyword   person
//	5  who is + extractable name  person
//	6  student list phrasing      student_list
//	7  student count phrasing     student_count
//	8  program attribute keyword  program_info
//	9  default                    document
//
// Institutional and pronoun checks precede name extraction so "who is the
// principal" and "what is my email" never fall into generic person search;
// teacher-subject precedes generic person detection because "who teaches X"
// superficially resembles "who is X".
var intentRules = []intentRule{
	{
		name:   "institutional_role",
		match:  func(f questionFacts) bool { return f.institutionalRole() },
		intent: IntentDocument,
	},
	{
		name:   "personal_pronoun",
		match:  func(f questionFacts) bool { return f.personalPronoun() },
		intent: IntentPerson,
	},
	{
		name:   "teacher_subject",
		match:  func(f questionFacts) bool { return teachesPattern.MatchString(f.lower) },
		intent: IntentTeacherSubject,
	},
	{
		// A restricted field keyword alone is not enough: "how many students
		// in batch 2022" carries "batch" without targeting anyone. The rule
		// fires only when a person name is also extractable.
		name:   "restricted_field",
		match:  func(f questionFacts) bool { return f.restrictedField() && f.hasName },
		intent: IntentPerson,
	},
	{
		name:   "person_by_name",
		match:  func(f questionFacts) bool { return f.personQueryPhrase() && f.hasName },
		intent: IntentPerson,
	},
	{
		name:   "student_list",
		match:  func(f questionFacts) bool { return studentListPattern.MatchString(f.lower) },
		intent: IntentStudentList,
	},
	{
		name:   "student_count",
		match:  func(f questionFacts) bool { return studentCountPattern.MatchString(f.lower) },
		intent: IntentStudentCount,
	},
	{
		name:   "program_info",
		match:  func(f questionFacts) bool { return containsAny(f.lower, programAttributeTokens) },
		intent: IntentProgramInfo,
	},
}

// Classify maps a raw question to an intent. Deterministic and total.
func Classify(question string) Intent {
	return classifyFacts(newQuestionFacts(question))
}

func classifyFacts(facts questionFacts) Intent {
	for _, rule := range intentRules {
		if rule.match(facts) {
			return rule.intent
		}
	}
	return IntentDocument
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if containsToken(text, token) {
			return true
		}
	}
	return false
}

// containsToken matches token at word boundaries so "section" does not fire
// inside "intersection".
func containsToken(text, token string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], token)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(token)
		beforeOK := idx == 0 || !isWordByte(text[idx-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
