package loader

import "datadash/domain/dataset"

// SelectActive picks the dataset that drives the preview and chart. An
// upload always wins over remote data; nil means nothing to show.
func SelectActive(uploaded, remote *dataset.Dataset) *dataset.Dataset {
	if uploaded != nil {
		return uploaded
	}
	return remote
}
