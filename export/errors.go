package export

import "errors"

var (
	// ErrInvalidMetricName indicates the metric name is not a legal Prometheus name.
	ErrInvalidMetricName = errors.New("export: invalid metric name")

	// ErrInvalidLabelName indicates the label name is not a legal Prometheus label.
	ErrInvalidLabelName = errors.New("export: invalid label name")

	// ErrNilRegistry indicates a nil health registry was supplied.
	ErrNilRegistry = errors.New("export: health registry is nil")
)
