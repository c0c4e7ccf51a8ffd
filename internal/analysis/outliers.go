package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// ZThreshold is the absolute z-score above which a value is an outlier.
const ZThreshold = 3.0

const (
	// NoOutliers is reported when no numeric column has an outlier.
	NoOutliers = "No outliers detected with the |Z|>3 rule."
	// NoNumericColumns is reported when the table has no numeric column.
	NoNumericColumns = "The dataset has no numeric columns."
)

// OutlierFinding counts the outliers of one numeric column.
type OutlierFinding struct {
	Column  string  `json:"column" yaml:"column"`
	Count   int     `json:"count" yaml:"count"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Std     float64 `json:"std" yaml:"std"`
	MaxAbsZ float64 `json:"max_abs_z" yaml:"max_abs_z"`
}

// OutlierReport lists outlier findings over numeric columns.
type OutlierReport struct {
	NumericColumns int              `json:"numeric_columns" yaml:"numeric_columns"`
	Findings       []OutlierFinding `json:"findings" yaml:"findings"`
}

// Empty reports whether nothing was found.
func (r OutlierReport) Empty() bool { return len(r.Findings) == 0 }

// Lines renders one message per finding, or a sentinel.
func (r OutlierReport) Lines() []string {
	if r.NumericColumns == 0 {
		return []string{NoNumericColumns}
	}
	if r.Empty() {
		return []string{NoOutliers}
	}
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = fmt.Sprintf("[%s] - %d possible outliers (|Z|>%.0f)", f.Column, f.Count, ZThreshold)
	}
	return out
}

// FindOutliers applies the population z-score rule to numeric columns
// selected by term. Columns with zero variance or no values are skipped.
func FindOutliers(t *table.Table, term string) OutlierReport {
	var numeric []*table.Column
	for _, c := range t.Columns {
		if c.Kind == table.KindNumber {
			numeric = append(numeric, c)
		}
	}
	r := OutlierReport{NumericColumns: len(numeric)}
	for _, c := range FilterColumns(numeric, term) {
		vals := numericValues(c)
		mean, std := meanStd(vals)
		if len(vals) == 0 || std == 0 {
			continue
		}
		f := OutlierFinding{Column: c.Name, Mean: mean, Std: std}
		for _, v := range vals {
			z := math.Abs((v - mean) / std)
			if z > ZThreshold {
				f.Count++
			}
			if z > f.MaxAbsZ {
				f.MaxAbsZ = z
			}
		}
		if f.Count > 0 {
			r.Findings = append(r.Findings, f)
		}
	}
	return r
}

func numericValues(c *table.Column) []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, v := range c.Cells {
		if v.Valid {
			out = append(out, v.Num)
		}
	}
	return out
}

// meanStd returns the mean and population standard deviation (divisor N)
// using Welford's update.
func meanStd(vals []float64) (mean, std float64) {
	var m2 float64
	for i, v := range vals {
		d := v - mean
		mean += d / float64(i+1)
		m2 += d * (v - mean)
	}
	if len(vals) == 0 {
		return 0, 0
	}
	return mean, math.Sqrt(m2 / float64(len(vals)))
}
