package gradevue

import (
	"strings"

	"github.com/shopspring/decimal"
)

// A ScoreFormat is the textual encoding a raw assignment score was recognized as.
type ScoreFormat int

const (
	// ScoreUnrecognized is any score that is not numeric, e.g. `Not Graded`.
	ScoreUnrecognized ScoreFormat = iota

	// ScoreFraction is an `earned out of possible` raw score.
	ScoreFraction

	// ScoreLiteral is a percentage followed by `()`, e.g. `92.5()`.
	ScoreLiteral
)

func (f ScoreFormat) String() string {
	switch f {
	case ScoreFraction:
		return "fraction"
	case ScoreLiteral:
		return "literal"
	default:
		return "unrecognized"
	}
}

const (
	fractionSeparator = " out of "
	literalMarker     = "()"
)

var hundred = decimal.NewFromInt(100)

// scorePrecision is the number of decimal places kept when dividing a
// fraction score, giving two-digit percentages 28 significant digits.
const scorePrecision = 26

// A ScoreDetail is a parsed assignment score.
type ScoreDetail struct {
	// Percent is the score as a percentage.
	Percent decimal.Decimal

	Format ScoreFormat

	// Earned and Possible are the points of a ScoreFraction score and nil
	// for every other format.
	Earned   *decimal.Decimal
	Possible *decimal.Decimal
}

// ParseScore converts a raw assignment score into a percentage. It is
// ParseScoreDetail without the points.
func ParseScore(raw string) (decimal.Decimal, ScoreFormat, error) {
	d, err := ParseScoreDetail(raw)

	return d.Percent, d.Format, err
}

// ParseScoreDetail parses a raw assignment score.
//
// `x out of y` scores become x*100/y rounded to 26 decimal places, or exactly
// 100 when y is not positive; x and y are kept as Earned and Possible.
// Scores containing `()` are already percentages and are returned with the
// marker removed. Anything else is ScoreUnrecognized with a zero score. A
// recognized score whose numbers do not parse is a *MalformedScoreError.
func ParseScoreDetail(raw string) (ScoreDetail, error) {
	if strings.Contains(raw, fractionSeparator) {
		failed := ScoreDetail{Percent: decimal.Zero, Format: ScoreFraction}
		parts := strings.Split(raw, fractionSeparator)

		if len(parts) != 2 {
			return failed, &MalformedScoreError{Raw: raw}
		}

		earned, err := decimal.NewFromString(strings.TrimSpace(parts[0]))

		if err != nil {
			return failed, &MalformedScoreError{Raw: raw, Err: err}
		}

		possible, err := decimal.NewFromString(strings.TrimSpace(parts[1]))

		if err != nil {
			return failed, &MalformedScoreError{Raw: raw, Err: err}
		}

		d := ScoreDetail{Percent: hundred, Format: ScoreFraction, Earned: &earned, Possible: &possible}

		if possible.IsPositive() {
			d.Percent = earned.Mul(hundred).DivRound(possible, scorePrecision)
		}

		return d, nil
	}

	if strings.Contains(raw, literalMarker) {
		pct, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(raw, literalMarker, "")))

		if err != nil {
			return ScoreDetail{Percent: decimal.Zero, Format: ScoreLiteral}, &MalformedScoreError{Raw: raw, Err: err}
		}

		return ScoreDetail{Percent: pct, Format: ScoreLiteral}, nil
	}

	return ScoreDetail{Percent: decimal.Zero, Format: ScoreUnrecognized}, nil
}
