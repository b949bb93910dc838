// Package refdata is the single source of truth for the registrant
// reference vocabularies. Intake strings are mapped through total
// functions: unknown input is an error, never a silent default.
package refdata

import (
	"fmt"
	"strings"
)

type CivilStatus string

const (
	CivilSingle    CivilStatus = "single"
	CivilMarried   CivilStatus = "married"
	CivilWidowed   CivilStatus = "widowed"
	CivilSeparated CivilStatus = "separated"
	CivilAnnulled  CivilStatus = "annulled"
)

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
)

type EducationalAttainment string

const (
	EducElementary   EducationalAttainment = "elementary"
	EducHighSchool   EducationalAttainment = "high-school"
	EducSeniorHigh   EducationalAttainment = "senior-high"
	EducVocational   EducationalAttainment = "vocational"
	EducCollege      EducationalAttainment = "college"
	EducPostGraduate EducationalAttainment = "post-graduate"
	EducNoGradeLevel EducationalAttainment = "no-grade-completed"
)

var civilStatuses = map[string]CivilStatus{
	"single":    CivilSingle,
	"married":   CivilMarried,
	"widowed":   CivilWidowed,
	"widow":     CivilWidowed,
	"widower":   CivilWidowed,
	"separated": CivilSeparated,
	"annulled":  CivilAnnulled,
}

var employmentStatuses = map[string]EmploymentStatus{
	"employed":      EmploymentEmployed,
	"self-employed": EmploymentSelfEmployed,
	"self employed": EmploymentSelfEmployed,
	"unemployed":    EmploymentUnemployed,
	"student":       EmploymentStudent,
	"retired":       EmploymentRetired,
}

var attainments = map[string]EducationalAttainment{
	"elementary":           EducElementary,
	"elementary graduate":  EducElementary,
	"high school":          EducHighSchool,
	"high-school":          EducHighSchool,
	"high school graduate": EducHighSchool,
	"senior high":          EducSeniorHigh,
	"senior-high":          EducSeniorHigh,
	"vocational":           EducVocational,
	"tvet":                 EducVocational,
	"college":              EducCollege,
	"college graduate":     EducCollege,
	"post graduate":        EducPostGraduate,
	"post-graduate":        EducPostGraduate,
	"masters":              EducPostGraduate,
	"doctorate":            EducPostGraduate,
	"no grade completed":   EducNoGradeLevel,
}

func ParseCivilStatus(s string) (CivilStatus, error) {
	if v, ok := civilStatuses[norm(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown civil status %q", s)
}

func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	if v, ok := employmentStatuses[norm(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown employment status %q", s)
}

func ParseEducationalAttainment(s string) (EducationalAttainment, error) {
	if v, ok := attainments[norm(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown educational attainment %q", s)
}

func norm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), " "))
}
