package loader

import "datadash/domain/dataset"

// PrepareChart pairs the selected columns row by row. It reports false, with
// no points, when there is no dataset or either axis is not one of its columns.
func PrepareChart(ds *dataset.Dataset, sel dataset.AxisSelection) ([]dataset.ChartPoint, bool) {
	if ds == nil || !sel.IsComplete() {
		return nil, false
	}
	xCol, ok := ds.Column(sel.X)
	if !ok {
		return nil, false
	}
	yCol, ok := ds.Column(sel.Y)
	if !ok {
		return nil, false
	}

	points := make([]dataset.ChartPoint, ds.NumRows())
	for i := range points {
		points[i] = dataset.ChartPoint{X: xCol.Values[i], Y: yCol.Values[i]}
	}
	return points, true
}
