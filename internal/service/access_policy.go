package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samriddhi-college/chatbot-api/internal/models"
)

// Refusal strings surfaced when the policy denies a question. These are
// policy decisions, not faults: they travel back as normal responses.
const (
	guestRefusalMessage = "I'm sorry, but personal details about students and teachers are only available to logged-in members. " +
		"I can help you with public program information like courses, duration, seats, and admission instead."
	studentRefusalMessage = "You can only view your own records. Other students' information is private."
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Refusal string
}

// PersonFinder is the single directory dependency the policy needs: rule 3
// must know whether an extracted name belongs to a teacher, the caller, or a
// different student.
type PersonFinder interface {
	SearchPerson(ctx context.Context, name string) (*PersonMatch, error)
}

// AccessPolicy decides whether a (question, role) pair may proceed. It is a
// pure function of its inputs plus at most one directory lookup.
type AccessPolicy struct {
	directory PersonFinder
	logger    zerolog.Logger
}

// NewAccessPolicy constructs the role-based access policy.
func NewAccessPolicy(directory PersonFinder, logger zerolog.Logger) *AccessPolicy {
	return &AccessPolicy{
		directory: directory,
		logger:    logger.With().Str("component", "access_policy").Logger(),
	}
}

// Check evaluates the access rules in precedence order:
//
//  1. Institutional role questions are public document facts and always pass,
//     unless they also request a contact-style field.
//  2. Guests are refused any question touching restricted fields, or any
//     explicit "who is / tell me about" question resolving to a person name.
//  3. Students may see their own record and any teacher's record, but not
//     another student's.
//  4. Teachers and admins, or questions targeting nobody specific, pass.
func (p *AccessPolicy) Check(ctx context.Context, question string, role models.Role, caller *models.Student) Decision {
	facts := newQuestionFacts(question)

	if facts.institutionalRole() && !facts.contactField() {
		return Decision{Allowed: true}
	}

	switch role {
	case models.RoleGuest:
		if facts.restrictedField() {
			return Decision{Refusal: guestRefusalMessage}
		}
		if facts.personQueryPhrase() && facts.hasName {
			return Decision{Refusal: guestRefusalMessage}
		}
		return Decision{Allowed: true}

	case models.RoleStudent:
		if !facts.hasName {
			return Decision{Allowed: true}
		}
		match, err := p.directory.SearchPerson(ctx, facts.name)
		if err != nil {
			// A directory fault is not a policy denial; the downstream
			// handler will surface its own "couldn't find" message.
			p.logger.Warn().Err(err).Msg("directory lookup failed during access check")
			return Decision{Allowed: true}
		}
		if match == nil || match.Kind == PersonKindTeacher {
			return Decision{Allowed: true}
		}
		if caller != nil && strings.EqualFold(match.Student.Name, caller.Name) {
			return Decision{Allowed: true}
		}
		return Decision{Refusal: studentRefusalMessage}

	default:
		return Decision{Allowed: true}
	}
}
