package gradevue

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const notForGrading = "(Not For Grading)"

// Normalize converts a decoded gradebook into typed entities. A nil
// requestedPeriod is an overview request: only the reporting periods are
// mapped, and a nil document yields an empty Gradebook. Otherwise courses are
// mapped too, and a nil document is ErrAuthenticationOrSession.
//
// Normalize keeps no state; any mapping error aborts the whole call.
func Normalize(doc Document, requestedPeriod *int) (*Gradebook, error) {
	if requestedPeriod == nil {
		ov, err := NormalizeOverview(doc)

		if err != nil {
			return nil, err
		}

		return &Gradebook{Overview: ov}, nil
	}

	return NormalizeGradebook(doc)
}

// NormalizeOverview maps the reporting periods of a decoded gradebook. A nil
// document means the service had no gradebook to give; it is not an error and
// yields an Overview without periods.
func NormalizeOverview(doc Document) (Overview, error) {
	if doc == nil {
		return Overview{}, nil
	}

	periods, current, err := mapReportingPeriods(record(doc))

	if err != nil {
		return Overview{}, err
	}

	return Overview{Periods: periods, Current: current}, nil
}

// NormalizeGradebook maps the reporting periods and courses of a decoded
// gradebook.
func NormalizeGradebook(doc Document) (*Gradebook, error) {
	if doc == nil {
		return nil, ErrAuthenticationOrSession
	}

	gb := record(doc)
	periods, current, err := mapReportingPeriods(gb)

	if err != nil {
		return nil, err
	}

	var courseRecords []record

	if cs, ok := gb.child("Courses"); ok {
		courseRecords = cs.children("Course")
	}

	courses := make([]Course, 0, len(courseRecords))

	for i, cr := range courseRecords {
		c, err := mapCourse(cr)

		if err != nil {
			return nil, fmt.Errorf("course %d: %w", i, err)
		}

		courses = append(courses, c)
	}

	return &Gradebook{
		Overview: Overview{Periods: periods, Current: current},
		Courses:  courses,
	}, nil
}

// mapReportingPeriods maps ReportingPeriods>ReportPeriod. The current period
// is the last one whose name equals the gradebook's own
// ReportingPeriod GradePeriod.
func mapReportingPeriods(gb record) ([]ReportingPeriod, *ReportingPeriod, error) {
	var prs []record

	if rps, ok := gb.child("ReportingPeriods"); ok {
		prs = rps.children("ReportPeriod")
	}

	periods := make([]ReportingPeriod, 0, len(prs))

	for i, pr := range prs {
		ar := attrReader{r: pr}
		p := ReportingPeriod{
			Index:     ar.get("Index"),
			StartDate: ar.get("StartDate"),
			EndDate:   ar.get("EndDate"),
			Name:      ar.get("GradePeriod"),
		}

		if ar.err != nil {
			return nil, nil, fmt.Errorf("report period %d: %w", i, ar.err)
		}

		periods = append(periods, p)
	}

	selected, ok := gb.child("ReportingPeriod")

	if !ok {
		return periods, nil, nil
	}

	name, err := selected.attr("GradePeriod")

	if err != nil {
		return nil, nil, fmt.Errorf("reporting period: %w", err)
	}

	var current *ReportingPeriod

	for i := range periods {
		if periods[i].Name == name {
			current = &periods[i]
		}
	}

	return periods, current, nil
}

// mapCourse maps a Course record. Only the first Mark is used; the service
// lists the mark of the requested period first.
func mapCourse(cr record) (Course, error) {
	ar := attrReader{r: cr}
	c := Course{
		Name:              ar.get("Title"),
		Period:            ar.get("Period"),
		TeacherEmail:      ar.get("StaffEMail"),
		Room:              ar.get("Room"),
		TeacherName:       ar.get("Staff"),
		Assignments:       []Assignment{},
		OverallScore:      decimal.Zero,
		OverallScoreLabel: NoScoreLabel,
	}

	if ar.err != nil {
		return Course{}, ar.err
	}

	marks, ok := cr.child("Marks")

	if !ok {
		return c, nil
	}

	ms := marks.children("Mark")

	if len(ms) == 0 {
		return c, nil
	}

	mark := ms[0]

	if as, ok := mark.child("Assignments"); ok {
		for i, r := range as.children("Assignment") {
			a, err := mapAssignment(r)

			if err != nil {
				return Course{}, fmt.Errorf("assignment %d: %w", i, err)
			}

			c.Assignments = append(c.Assignments, a)
		}
	}

	ar = attrReader{r: mark}
	raw := ar.get("CalculatedScoreRaw")
	label := ar.get("CalculatedScoreString")

	if ar.err != nil {
		return Course{}, fmt.Errorf("mark: %w", ar.err)
	}

	score := decimal.Zero

	if raw != "" {
		s, err := decimal.NewFromString(raw)

		if err != nil {
			return Course{}, fmt.Errorf("mark: %w", &MalformedScoreError{Raw: raw, Err: err})
		}

		score = s
	}

	c.OverallScore = score
	c.OverallScoreLabel = label

	return c, nil
}

func mapAssignment(r record) (Assignment, error) {
	ar := attrReader{r: r}
	a := Assignment{
		Title:       ar.get("Measure"),
		Description: ar.get("MeasureDescription"),
		StartDate:   ar.get("DropStartDate"),
		EndDate:     ar.get("DropEndDate"),
		DueDate:     ar.get("DueDate"),
		Date:        ar.get("Date"),
		Type:        ar.get("Type"),
		Notes:       ar.get("Notes"),
	}
	scoreType := ar.get("ScoreType")
	rawScore := ar.get("Score")
	id := ar.get("GradebookID")

	if ar.err != nil {
		return Assignment{}, ar.err
	}

	score, err := ParseScoreDetail(rawScore)

	if err != nil {
		return Assignment{}, fmt.Errorf("score of %q: %w", a.Title, err)
	}

	if score.Format != ScoreUnrecognized {
		a.Score = &score.Percent
		a.ScoreType = &scoreType
		a.Earned = score.Earned
		a.Possible = score.Possible
	}

	if id != "" {
		a.ID = &id
	}

	a.ForGrading = a.Notes != notForGrading

	return a, nil
}

// attrReader reads attributes from a record and keeps the first error.
type attrReader struct {
	r   record
	err error
}

func (ar *attrReader) get(name string) string {
	if ar.err != nil {
		return ""
	}

	v, err := ar.r.attr(name)

	if err != nil {
		ar.err = err
	}

	return v
}
