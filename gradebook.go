package gradevue

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// An Overview holds a school's reporting periods and the one the service
// currently has selected.
type Overview struct {
	// Periods holds every reporting period of the student's school, in the
	// order the service lists them. It is nil only when the service returned
	// no gradebook at all.
	Periods []ReportingPeriod

	// Current is the reporting period the gradebook was generated for. It is
	// nil when the document does not designate one, and otherwise points at
	// an element of Periods.
	Current *ReportingPeriod
}

// HasGradebook reports whether the overview was built from a gradebook.
func (o Overview) HasGradebook() bool {
	return o.Periods != nil
}

// A Gradebook holds a student's courses for one reporting period, including
// their grades and assignments, along with the school's reporting periods.
type Gradebook struct {
	Overview

	// Courses holds the student's classes in the order the service lists them,
	// which is normally the class period order of the student's schedule.
	Courses []Course
}

// FindAssignment returns the assignment with the given gradebook ID from any
// course, or nil if there is none.
func (g *Gradebook) FindAssignment(id string) *Assignment {
	for i := range g.Courses {
		for j := range g.Courses[i].Assignments {
			a := &g.Courses[i].Assignments[j]

			if a.ID != nil && *a.ID == id {
				return a
			}
		}
	}

	return nil
}

// A ReportingPeriod is one grading term of a school (quarter, semester, ...).
// Its identity is Index.
type ReportingPeriod struct {
	// Index is the period's position as the service numbers it. It is the
	// value sent back to the service to request that period's gradebook.
	Index string

	StartDate string
	EndDate   string

	// Name is the grading period name, e.g. `1st Qtr Progress`.
	Name string
}

// Span parses the period's start and end dates.
func (p ReportingPeriod) Span() (start, end time.Time, err error) {
	if start, err = ParseDate(p.StartDate); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end, err = ParseDate(p.EndDate); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// NoScoreLabel is the overall score label of a course without marks.
const NoScoreLabel = "N/A"

// A Course represents one of a student's classes for a reporting period.
type Course struct {
	// Name is the course title as the service reports it, usually `Name (ID)`.
	Name string

	// Period is the period of the day in which the student has this class.
	Period string

	TeacherEmail string
	Room         string
	TeacherName  string

	// Assignments holds the course's assignments from its primary mark, in
	// document order. It is empty, never nil, when the course has no marks.
	Assignments []Assignment

	// OverallScore is the mark's calculated raw score, zero without marks.
	OverallScore decimal.Decimal

	// OverallScoreLabel is the mark's calculated score string (usually a
	// letter grade), NoScoreLabel without marks.
	OverallScoreLabel string
}

// ID splits the course title into its name and school ID.
func (c Course) ID() (CourseID, error) {
	return ParseCourseTitle(c.Name)
}

// An Assignment is a single entry into a course's gradebook by an instructor.
type Assignment struct {
	// Title is the name of the assignment entry.
	Title string

	// ScoreType is the kind of score, e.g. `Raw Score`. It is nil, together
	// with Score, when the score is not numeric.
	ScoreType *string

	// Score is the assignment score as a percentage. Values above 100 are
	// possible (extra credit) and kept as is.
	Score *decimal.Decimal

	// Earned and Possible are the points behind an `x out of y` score. They
	// are nil for scores given directly as a percentage.
	Earned   *decimal.Decimal
	Possible *decimal.Decimal

	Description string

	// StartDate and EndDate bound the window in which the assignment counts.
	StartDate string
	EndDate   string

	DueDate string

	// Date is the date on which the assignment was entered into the gradebook.
	Date string

	// Type is the weighted category to which the assignment belongs.
	Type string

	// ID is the internal ID given to the assignment by StudentVUE, nil when
	// the service left it empty.
	ID *string

	// Notes is any comment added by the instructor on the assignment entry.
	Notes string

	// ForGrading is false only for entries the instructor marked
	// `(Not For Grading)`.
	ForGrading bool
}

// Due parses the assignment's due date.
func (a Assignment) Due() (time.Time, error) {
	return ParseDate(a.DueDate)
}

// A CourseID holds the identification information for a class.
type CourseID struct {
	// ID is the school's/StudentVUE's internal ID for the class.
	ID string

	// Name is the official name of the class.
	Name string
}

var courseTitleRegex = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*$`)

// ParseCourseTitle splits a course title in the format `Course (ID)`.
func ParseCourseTitle(title string) (CourseID, error) {
	m := courseTitleRegex.FindStringSubmatch(title)

	if len(m) != 3 {
		return CourseID{}, fmt.Errorf("expected course title in format `Course (ID)`, received %q", title)
	}

	return CourseID{ID: m[2], Name: m[1]}, nil
}

const gradebookDateFormat = "1/2/2006"

// ParseDate parses a date in the format StudentVUE uses, e.g. `9/4/2019`.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(gradebookDateFormat, s)
}
