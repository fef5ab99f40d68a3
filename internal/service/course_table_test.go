package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const curriculumSample = `## Semester 1
| Course Code | Course Name | Credits | Full Marks |
|-------------|-------------|---------|------------|
| CSC114 | Introduction to Information Technology | 3 | 100 |
| CSC115 | C Programming | 3 | 100 |

## Semester 2
| Course Code | Course Name | Credits | Full Marks |
|-------------|-------------|---------|------------|
| CSC161 | Discrete Structures | 3 | 80 |
`

func TestExtractCourses(t *testing.T) {
	t.Run("captures only the target semester", func(t *testing.T) {
		rows := ExtractCourses(curriculumSample, "1")
		require.Len(t, rows, 2)
		require.Equal(t, CourseRow{Code: "CSC114", Name: "Introduction to Information Technology", Credits: "3", FullMarks: "100"}, rows[0])
		require.Equal(t, "C Programming", rows[1].Name)
	})

	t.Run("second semester starts after its header", func(t *testing.T) {
		rows := ExtractCourses(curriculumSample, "2")
		require.Len(t, rows, 1)
		require.Equal(t, "CSC161", rows[0].Code)
	})

	t.Run("missing semester extracts nothing", func(t *testing.T) {
		require.Empty(t, ExtractCourses(curriculumSample, "7"))
	})

	t.Run("prose without tables extracts nothing", func(t *testing.T) {
		require.Empty(t, ExtractCourses("The CSIT program offers a broad curriculum.", "1"))
	})

	t.Run("serial number column is dropped", func(t *testing.T) {
		text := "Semester 3\n| 1 | CSC206 | Object Oriented Programming | 3 | 100 |"
		rows := ExtractCourses(text, "3")
		require.Len(t, rows, 1)
		require.Equal(t, "CSC206", rows[0].Code)
		require.Equal(t, "Object Oriented Programming", rows[0].Name)
	})

	t.Run("header row variants are skipped", func(t *testing.T) {
		text := "| Semester 4 |\n| Course Code | Course Name | Credits |\n| CSC257 | Operating Systems | 4 |"
		rows := ExtractCourses(text, "4")
		require.Len(t, rows, 1)
		require.Equal(t, "Operating Systems", rows[0].Name)
	})
}

func TestFormatCourseRows(t *testing.T) {
	rows := []CourseRow{
		{Code: "CSC114", Name: "Introduction to Information Technology", Credits: "3"},
		{Code: "CSC115", Name: "C Programming", Credits: "3"},
	}

	got := FormatCourseRows("BSc.CSIT", "1", rows)
	require.Equal(t,
		"BSc.CSIT Semester 1 Courses:\n"+
			"- Introduction to Information Technology (CSC114): 3 credits\n"+
			"- C Programming (CSC115): 3 credits",
		got)
}

func TestSemesterNumberFromQuestion(t *testing.T) {
	require.Equal(t, "3", semesterNumberFromQuestion("list courses in semester 3 for BCA"))
	require.Equal(t, "5", semesterNumberFromQuestion("what subjects are in semester 5?"))
	require.Equal(t, "1", semesterNumberFromQuestion("course structure of CSIT"))
}
