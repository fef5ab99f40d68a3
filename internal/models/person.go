package models

import "time"

// Role identifies the caller category attached to an incoming question.
type Role string

// Roles recognised by the access policy.
const (
	RoleGuest   Role = "guest"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps arbitrary input onto a known role, defaulting to guest.
func NormalizeRole(value string) Role {
	switch Role(value) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(value)
	default:
		return RoleGuest
	}
}

// Student is a learner record imported from the registrar's spreadsheets.
/// Every attribute beyond the name is optional: imports routinely arrive with
// blank cells, so all lookups and formatting must tolerate nil fields.
type Student struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"size:255;not null;index" json:"name"`
	Program        *string `gorm:"size:64" json:"program,omitempty"`
	Batch          *string `gorm:"size:32" json:"batch,omitempty"`
	Section        *string `gorm:"size:16" json:"section,omitempty"`
	YearSemester   *string `gorm:"size:64" json:"year_semester,omitempty"`
	RollNo         *string `gorm:"size:32" json:"roll_no,omitempty"`
	SymbolNo       *string `gorm:"size:32" json:"symbol_no,omitempty"`
	RegistrationNo *string `gorm:"size:64" json:"registration_no,omitempty"`
	Email          *string `gorm:"size:255;index" json:"email,omitempty"`
	Phone          *string `gorm:"size:32" json:"phone,omitempty"`
	Gender         *string `gorm:"size:16" json:"gender,omitempty"`
	DOBAD          *string `gorm:"size:32;column:dob_ad" json:"dob_ad,omitempty"`
	DOBBS          *string `gorm:"size:32;column:dob_bs" json:"dob_bs,omitempty"`
	PermAddress    *string `gorm:"size:255" json:"perm_address,omitempty"`
	TempAddress    *string `gorm:"size:255" json:"temp_address,omitempty"`
	JoinedDate     *string `gorm:"size:32" json:"joined_date,omitempty"`

	// Performance fields populated by the academic office export.
	GPA                  *float64 `json:"gpa,omitempty"`
	CGPA                 *float64 `json:"cgpa,omitempty"`
	CurrentSemesterGPA   *float64 `json:"current_semester_gpa,omitempty"`
	AttendancePercentage *float64 `json:"attendance_percentage,omitempty"`
	AcademicStatus       *string  `gorm:"size:64" json:"academic_status,omitempty"`
	TotalCreditsEarned   *int     `json:"total_credits_earned,omitempty"`
	CreditsRemaining     *int     `json:"credits_remaining,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table aligned with the import scripts.
func (Student) TableName() string { return "students_data" }

// Teacher is a faculty record.
type Teacher struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Designation *string `gorm:"size:128" json:"designation,omitempty"`
	Subject     *string `gorm:"size:255" json:"subject,omitempty"`
	Degree      *string `gorm:"size:255" json:"degree,omitempty"`
	Email       *string `gorm:"size:255;index" json:"email,omitempty"`
	Phone       *string `gorm:"size:32" json:"phone,omitempty"`
	Address     *string `gorm:"size:255" json:"address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table aligned with the import scripts.
func (Teacher) TableName() string { return "teachers_data" }
