package service

import (
	"regexp"
	"strings"
)

// scaffoldPhrases are stripped from a question, in order, before treating the
// remainder as a person name. Longer phrases come first so "date of birth"
// disappears before the bare "of" rule can split it.
var scaffoldPhrases = []string{
	// interrogative prefixes
	"can you tell me", "could you tell me", "please tell me", "i want to know",
	"tell me about", "tell me", "give me", "show me", "do you know",
	"what is the", "what is", "what are the", "what are", "what about",
	"who is the", "who is", "who are", "where is", "where does",
	"details about", "details of", "information about", "information of",
	"info about", "info of", "how many", "how much",
	// field-name prefixes
	"email address of", "email address", "email of", "email id", "email",
	"phone number of", "phone number", "phone of", "phone",
	"contact number of", "contact number", "contact of", "contact",
	"permanent address of", "permanent address", "temporary address of", "temporary address",
	"address of", "address",
	"roll number of", "roll number", "roll no of", "roll no",
	"symbol number of", "symbol number", "symbol no of", "symbol no",
	"registration number of", "registration number", "registration no of", "registration no",
	"date of birth of", "date of birth", "dob of", "dob", "birthday of", "birthday",
	"gender of", "gender", "batch of", "batch", "section of", "section",
	"semester of", "semesters", "semester", "program of",
	"gpa of", "cgpa of", "gpa", "cgpa", "attendance of", "attendance",
	"academic status of", "academic status", "joined date of", "joined date",
	"marks of", "marks", "grades of", "grades",
	"credits earned", "credits remaining", "credits", "credit",
	"subject of", "subject", "designation of", "designation", "degree of", "degree",
	// program aliases never form part of a name
	"computer science and it", "computer science", "computer applications",
	"social work", "business studies", "bsc csit", "csit", "bca", "bsw", "bbs", "bsc",
	// generic stopwords
	"the", "a", "an", "of", "in", "at", "for", "to", "is", "are", "was", "does",
	"do", "have", "has", "can", "could", "you", "your", "we", "our", "us", "get",
	"and", "with", "college", "program", "please", "student", "teacher",
	"students", "teachers", "about", "my", "me", "mine", "myself", "i",
	"list", "show", "all", "how", "who", "what", "which", "where", "when",
	"why", "number", "total",
}

var (
	scaffoldPatterns = compileScaffoldPatterns()
	nonLetterPattern = regexp.MustCompile(`[^a-z\s]`)
	spacesPattern    = regexp.MustCompile(`\s+`)
	nameTokenPattern = regexp.MustCompile(`^[a-z]{2,}$`)
)

func compileScaffoldPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(scaffoldPhrases))
	for _, phrase := range scaffoldPhrases {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	return patterns
}

// ExtractName attempts to pull a person name out of a question by stripping
// question scaffolding and accepting a 1-3 token remainder. This is a
// best-effort heuristic: names longer than three tokens or containing
// scaffold-like words will not extract, and callers must treat a miss as a
// normal outcome rather than an error.
func ExtractName(question string) (string, bool) {
	working := strings.ToLower(question)
	working = strings.ReplaceAll(working, "'s", " ")
	working = nonLetterPattern.ReplaceAllString(working, " ")

	for _, pattern := range scaffoldPatterns {
		working = pattern.ReplaceAllString(working, " ")
	}

	working = strings.TrimSpace(spacesPattern.ReplaceAllString(working, " "))
	if working == "" {
		return "", false
	}

	tokens := strings.Fields(working)
	if len(tokens) < 1 || len(tokens) > 3 {
		return "", false
	}
	for _, token := range tokens {
		if !nameTokenPattern.MatchString(token) {
			return "", false
		}
	}

	return strings.Join(tokens, " "), true
}
