package profiling

import (
	"log"
	"math"
	"sort"
	"time"

	"datadash/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes one column of a dataset. Numeric columns carry
// location and spread statistics; other columns carry the distinct count.
type ColumnSummary struct {
	Name    string            `json:"name"`
	Type    dataset.ValueType `json:"type"`
	Count   int               `json:"count"`
	Missing int               `json:"missing"`
	Numeric *NumericSummary   `json:"numeric,omitempty"`
	Unique  int               `json:"unique,omitempty"`
}

// NumericSummary holds the statistics shown for numeric columns. Std is nil
// when fewer than two values are present.
type NumericSummary struct {
	Mean     float64  `json:"mean"`
	Std      *float64 `json:"std,omitempty"`
	Min      float64  `json:"min"`
	Q25      float64  `json:"q25"`
	Median   float64  `json:"median"`
	Q75      float64  `json:"q75"`
	Max      float64  `json:"max"`
	Skewness float64  `json:"skewness"`
}

// Describe summarizes every column of ds in column order
func Describe(ds *dataset.Dataset) []ColumnSummary {
	if ds == nil {
		return nil
	}
	startTime := time.Now()
	summaries := make([]ColumnSummary, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		summaries = append(summaries, DescribeColumn(col))
	}
	log.Printf("[profiling] Described %d columns x %d rows in %.2fms", ds.NumColumns(), ds.NumRows(), float64(time.Since(startTime).Nanoseconds())/1e6)
	return summaries
}

// DescribeColumn summarizes a single column
func DescribeColumn(col dataset.Column) ColumnSummary {
	summary := ColumnSummary{Name: col.Name, Type: col.Type}

	var numbers []float64
	distinct := make(map[string]struct{})
	for _, v := range col.Values {
		if v.IsMissing() {
			summary.Missing++
			continue
		}
		summary.Count++
		if v.IsNumeric() {
			numbers = append(numbers, v.AsFloat64())
		}
		distinct[string(v.Type)+":"+v.String()] = struct{}{}
	}

	if col.Type == dataset.ValueTypeNumeric && len(numbers) > 0 {
		summary.Numeric = describeNumbers(numbers)
		return summary
	}
	summary.Unique = len(distinct)
	return summary
}

func describeNumbers(data []float64) *NumericSummary {
	// stats only fails on empty input, which the caller rules out
	minimum, _ := stats.Min(data)
	maximum, _ := stats.Max(data)
	median, _ := stats.Median(data)
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	q25 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q75 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	mean, std := stat.MeanStdDev(data, nil)
	summary := &NumericSummary{
		Mean:   mean,
		Min:    minimum,
		Q25:    q25,
		Median: median,
		Q75:    q75,
		Max:    maximum,
	}
	if len(data) > 1 {
		summary.Std = &std
		summary.Skewness = calculateSkewness(data, mean, std)
	}
	return summary
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}
