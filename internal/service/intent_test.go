package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     Intent
	}{
		// institutional roles are public document facts, even with "who is"
		{"Who is the principal?", IntentDocument},
		{"Who is the head of department?", IntentDocument},
		{"Tell me about the dean", IntentDocument},

		// personal pronouns resolve to the caller
		{"What is my email?", IntentPerson},
		{"Show me my attendance", IntentPerson},

		// who teaches <subject> outranks generic person phrasing
		{"Who teaches Data Structures?", IntentTeacherSubject},
		{"who is teaching Microprocessor", IntentTeacherSubject},

		// restricted field plus an extractable name
		{"email of Ramesh Thapa", IntentPerson},
		{"What is Sita Gurung's phone number?", IntentPerson},
		{"gpa of Anita Sharma", IntentPerson},

		// explicit person questions
		{"Who is Ramesh Thapa?", IntentPerson},
		{"Tell me about Anita Sharma", IntentPerson},

		// roster phrasing; "batch" alone must not reroute to person
		{"List students in BCA batch 2022", IntentStudentList},
		{"show all students of CSIT", IntentStudentList},

		{"How many students are enrolled?", IntentStudentCount},
		{"total students at the college", IntentStudentCount},

		{"How many semesters does CSIT have?", IntentProgramInfo},
		{"What courses are in semester 3 of BCA?", IntentProgramInfo},
		{"What is the fee structure for BCA?", IntentProgramInfo},
		{"Do you offer BSW?", IntentProgramInfo},

		// everything else goes to the document path
		{"When was the college founded?", IntentDocument},
		{"What are the library opening hours?", IntentDocument},
	}

	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.question))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	require.Equal(t, IntentDocument, Classify(""))
	require.Equal(t, IntentDocument, Classify("???"))
}
