package gradevue

import (
	"github.com/shopspring/decimal"
)

// A Changeset describes how a student's gradebook changed between two snapshots.
type Changeset struct {
	a, b  *Gradebook
	pairs [][2]*Course

	CourseSwitches  []*CourseSwitch
	CourseAdditions []*Course
	CourseDrops     []*Course
	CourseChanges   []*CourseChange
}

// A CourseSwitch is a course that moved to a different class period.
type CourseSwitch struct {
	Before, After             *Course
	BeforePeriod, AfterPeriod string
}

// A CourseChange holds the changes within one course present in both snapshots.
type CourseChange struct {
	Course              *Course
	ScoreChange         *CourseScoreChange
	AssignmentChanges   []*AssignmentChange
	AssignmentAdditions []*Assignment
	AssignmentRemovals  []*Assignment
}

// A CourseScoreChange is a change of a course's overall score.
type CourseScoreChange struct {
	Increase                bool
	PreviousLabel, NewLabel string
	PreviousScore, NewScore decimal.Decimal
	Delta                   decimal.Decimal
}

// An AssignmentChange is an assignment present in both snapshots whose title,
// score or possible points changed.
type AssignmentChange struct {
	Before, After       *Assignment
	TitleChange         bool
	ScoreChange         bool
	ScoreIncrease       bool
	PossibleScoreChange bool
}

// CalcChangeset compares two gradebooks of the same student, a being the
// older one. Courses are matched by class period and identified by their
// course ID. Assignment and score changes are only computed when both
// gradebooks are for the same current reporting period.
func CalcChangeset(a, b *Gradebook) *Changeset {
	cs := &Changeset{a: a, b: b}

	cs.diffCourseSets()

	if samePeriod(a.Current, b.Current) {
		cs.diffCourseAssignments()
	}

	return cs
}

func (cs *Changeset) diffCourseSets() {
	bByPeriod := make(map[string]*Course)

	for i := range cs.b.Courses {
		bc := &cs.b.Courses[i]
		bByPeriod[bc.Period] = bc
	}

	used := make(map[*Course]bool)

	for i := range cs.a.Courses {
		ac := &cs.a.Courses[i]

		if bc, ok := bByPeriod[ac.Period]; ok && !used[bc] && courseKey(ac) == courseKey(bc) {
			used[bc] = true
			cs.pairs = append(cs.pairs, [2]*Course{ac, bc})

			continue
		}

		if bc := findCourse(cs.b.Courses, courseKey(ac), used); bc != nil {
			used[bc] = true
			cs.pairs = append(cs.pairs, [2]*Course{ac, bc})
			cs.CourseSwitches = append(cs.CourseSwitches, &CourseSwitch{ac, bc, ac.Period, bc.Period})

			continue
		}

		cs.CourseDrops = append(cs.CourseDrops, ac)
	}

	for i := range cs.b.Courses {
		if bc := &cs.b.Courses[i]; !used[bc] {
			cs.CourseAdditions = append(cs.CourseAdditions, bc)
		}
	}
}

func (cs *Changeset) diffCourseAssignments() {
	for _, p := range cs.pairs {
		ac, bc := p[0], p[1]
		cc := &CourseChange{Course: bc}

		bByKey := make(map[string]*Assignment)

		for i := range bc.Assignments {
			ba := &bc.Assignments[i]
			bByKey[assignmentKey(ba)] = ba
		}

		matched := make(map[*Assignment]bool)

		for i := range ac.Assignments {
			aa := &ac.Assignments[i]
			ba, ok := bByKey[assignmentKey(aa)]

			if !ok || matched[ba] {
				cc.AssignmentRemovals = append(cc.AssignmentRemovals, aa)

				continue
			}

			matched[ba] = true
			cc.diffAssignments(aa, ba)
		}

		for i := range bc.Assignments {
			if ba := &bc.Assignments[i]; !matched[ba] {
				cc.AssignmentAdditions = append(cc.AssignmentAdditions, ba)
			}
		}

		if ps, ns := ac.OverallScore, bc.OverallScore; !ps.Equal(ns) {
			delta := ns.Sub(ps)

			cc.ScoreChange = &CourseScoreChange{
				Increase:      delta.IsPositive(),
				PreviousLabel: ac.OverallScoreLabel,
				NewLabel:      bc.OverallScoreLabel,
				PreviousScore: ps,
				NewScore:      ns,
				Delta:         delta,
			}
		}

		changed := len(cc.AssignmentAdditions) + len(cc.AssignmentChanges) + len(cc.AssignmentRemovals)

		if cc.ScoreChange != nil || changed > 0 {
			cs.CourseChanges = append(cs.CourseChanges, cc)
		}
	}
}

func (cc *CourseChange) diffAssignments(a, b *Assignment) {
	titleChange := a.Title != b.Title
	scoreChange, scoreIncrease := compareScores(a.Score, b.Score)
	possibleChange, _ := compareScores(a.Possible, b.Possible)

	if !titleChange && !scoreChange && !possibleChange {
		return
	}

	cc.AssignmentChanges = append(cc.AssignmentChanges, &AssignmentChange{
		Before:              a,
		After:               b,
		TitleChange:         titleChange,
		ScoreChange:         scoreChange,
		ScoreIncrease:       scoreIncrease,
		PossibleScoreChange: possibleChange,
	})
}

// compareScores treats a nil value (ungraded) as lower than any value.
func compareScores(a, b *decimal.Decimal) (changed, increased bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return true, true
	case b == nil:
		return true, false
	}

	return !a.Equal(*b), b.GreaterThan(*a)
}

func samePeriod(a, b *ReportingPeriod) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Name == b.Name
}

func courseKey(c *Course) string {
	if id, err := c.ID(); err == nil {
		return id.ID
	}

	return c.Name
}

func assignmentKey(a *Assignment) string {
	if a.ID != nil {
		return "id:" + *a.ID
	}

	return "title:" + a.Title
}

func findCourse(courses []Course, key string, used map[*Course]bool) *Course {
	for i := range courses {
		if c := &courses[i]; !used[c] && courseKey(c) == key {
			return c
		}
	}

	return nil
}
