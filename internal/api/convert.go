package api

type Convertible[T any] interface {
	// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
	// It should be responsible for any normalization required to ensure consistency
	// across the API boundary.
	ToAPIType() (T, error)
}

var (
	_ Convertible[CheckHealth]   = DomainCheckStatus{}
	_ Convertible[Verdict]       = DomainVerdict{}
	_ Convertible[MetricSummary] = DomainMetricSummary{}
)

// convertAll converts every item, stopping at the first error.
func convertAll[T any, C Convertible[T]](items []C) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		data, err := item.ToAPIType()
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
