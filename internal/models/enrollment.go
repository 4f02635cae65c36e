package models

import "time"

// Cleaned gender labels exposed by the API.
const (
	GenderFemale  = "female"
	GenderMale    = "male"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

var cleanedGenders = map[string]string{
	"f": GenderFemale,
	"m": GenderMale,
	"o": GenderOther,
}

// CourseEnrollmentDaily is the total enrollment count for a course on a
// day. Table course_enrollment_daily, unique on (course_id, date).
type CourseEnrollmentDaily struct {
	CourseID string    `db:"course_id" json:"course_id"`
	Date     Date      `db:"date" json:"date"`
	Count    int       `db:"count" json:"count"`
	Created  time.Time `db:"created" json:"created"`
}

// CourseEnrollmentModeDaily breaks daily enrollment down by mode. Table
// course_enrollment_mode_daily, unique on (course_id, date, mode).
type CourseEnrollmentModeDaily struct {
	CourseID        string    `db:"course_id" json:"course_id"`
	Date            Date      `db:"date" json:"date"`
	Mode            string    `db:"mode" json:"mode"`
	Count           int       `db:"count" json:"count"`
	CumulativeCount int       `db:"cumulative_count" json:"cumulative_count"`
	Created         time.Time `db:"created" json:"created"`
}

// CourseEnrollmentByBirthYear breaks daily enrollment down by birth year.
// Table course_enrollment_birth_year_daily, unique on (course_id, date,
// birth_year).
type CourseEnrollmentByBirthYear struct {
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      Date      `db:"date" json:"date"`
	BirthYear int       `db:"birth_year" json:"birth_year"`
	Count     int       `db:"count" json:"count"`
	Created   time.Time `db:"created" json:"created"`
}

// CourseEnrollmentByEducation breaks daily enrollment down by education
// level. Table course_enrollment_education_level_daily, unique on
// (course_id, date, education_level).
type CourseEnrollmentByEducation struct {
	CourseID       string    `db:"course_id" json:"course_id"`
	Date           Date      `db:"date" json:"date"`
	EducationLevel *string   `db:"education_level" json:"education_level"`
	Count          int       `db:"count" json:"count"`
	Created        time.Time `db:"created" json:"created"`
}

// CourseEnrollmentByGender breaks daily enrollment down by gender. Table
// course_enrollment_gender_daily, unique on (course_id, date, gender).
type CourseEnrollmentByGender struct {
	CourseID string    `db:"course_id" json:"course_id"`
	Date     Date      `db:"date" json:"date"`
	Gender   *string   `db:"gender" json:"-"`
	Count    int       `db:"count" json:"count"`
	Created  time.Time `db:"created" json:"created"`
}

// CleanedGender returns the gender with full names, with "unknown"
// replacing null and unexpected values.
func (e CourseEnrollmentByGender) CleanedGender() string {
	if e.Gender == nil {
		return GenderUnknown
	}
	if cleaned, ok := cleanedGenders[*e.Gender]; ok {
		return cleaned
	}
	return GenderUnknown
}

// CourseEnrollmentByCountry holds current enrollment counts per country.
// Table course_enrollment_location_current, unique on (course_id, date,
// country_code).
type CourseEnrollmentByCountry struct {
	CourseID    string    `db:"course_id" json:"course_id"`
	Date        Date      `db:"date" json:"date"`
	CountryCode string    `db:"country_code" json:"country_code"`
	Count       int       `db:"count" json:"count"`
	Created     time.Time `db:"created" json:"created"`
}
