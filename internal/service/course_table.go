package service

import (
	"fmt"
	"regexp"
	"strings"
)

// CourseRow is one course pulled out of a pipe-delimited curriculum table.
// Rows are derived transiently during course-listing extraction.
type CourseRow struct {
	Code      string
	Name      string
	Credits   string
	FullMarks string
}

// semesterHeaderPattern accepts the header spellings seen in the curriculum
// documents: "Semester 3", "## Semester 3", "| Semester 3 |".
var semesterHeaderPattern = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\|?\s*semester\s+(\d+)\b`)

// ExtractCourses scans context text line by line, capturing pipe-delimited
// rows between the header for the target semester and the next semester
// header. An empty result means extraction failed and the caller should fall
// back to the generative path, not that zero courses exist.
func ExtractCourses(contextText, semester string) []CourseRow {
	var rows []CourseRow
	capturing := false

	for _, line := range strings.Split(contextText, "\n") {
		if match := semesterHeaderPattern.FindStringSubmatch(line); match != nil {
			if match[1] == semester {
				capturing = true
				continue
			}
			if capturing {
				break
			}
			continue
		}

		if !capturing || !strings.Contains(line, "|") {
			continue
		}
		if row, ok := parseCourseLine(line); ok {
			rows = append(rows, row)
		}
	}

	return rows
}

// parseCourseLine splits a pipe-delimited line into a CourseRow, skipping
// header and separator rows.
func parseCourseLine(line string) (CourseRow, bool) {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "course code") || strings.Contains(lower, "course name") {
		return CourseRow{}, false
	}

	var cells []string
	for _, cell := range strings.Split(line, "|") {
		trimmed := strings.TrimSpace(cell)
		if trimmed != "" {
			cells = append(cells, trimmed)
		}
	}
	if len(cells) < 3 {
		return CourseRow{}, false
	}
	if isSeparatorRow(cells) {
		return CourseRow{}, false
	}

	// Tables sometimes carry a serial-number column; drop it so the code
	// lands in the first cell.
	if len(cells) >= 4 && isNumeric(cells[0]) {
		cells = cells[1:]
	}
	if len(cells) < 3 {
		return CourseRow{}, false
	}

	row := CourseRow{Code: cells[0], Name: cells[1], Credits: cells[2]}
	if len(cells) > 3 {
		row.FullMarks = cells[3]
	}
	return row, true
}

func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return true
}

func isNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatCourseRows renders extracted rows as the course listing reply.
func FormatCourseRows(programName, semester string, rows []CourseRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Semester %s Courses:\n", programName, semester)
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s (%s): %s credits\n", row.Name, row.Code, row.Credits)
	}
	return strings.TrimRight(b.String(), "\n")
}

// semesterNumberFromQuestion returns the first standalone number in the
// question, defaulting to semester 1.
func semesterNumberFromQuestion(question string) string {
	for _, token := range strings.Fields(question) {
		trimmed := strings.Trim(token, "?.,!")
		if isNumeric(trimmed) {
			return trimmed
		}
	}
	return "1"
}
