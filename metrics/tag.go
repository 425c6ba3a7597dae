package metrics

// TagOption specifies a tag that should be added to a metric
type TagOption func() string

// WithTypeTag adds a "type" tag to a metric. This is typically used to
// differentiate metrics from different implementations of an interface.
func WithTypeTag(typeName string) TagOption {
	return func() string {
		return "type:" + typeName
	}
}

// WithServiceTag adds a "service" tag to a metric. This is typically used
// to indicate which service a metric came from.
func WithServiceTag(serviceName string) TagOption {
	return func() string {
		return "service:" + serviceName
	}
}

// WithAliasTag adds an "alias" tag to a metric, naming the wait it
// pertains to. Waits without an alias are tagged "unnamed".
func WithAliasTag(alias string) TagOption {
	if alias == "" {
		alias = "unnamed"
	}
	return func() string {
		return "alias:" + alias
	}
}

// WithOutcomeTag adds an "outcome" tag to a metric.
func WithOutcomeTag(outcome string) TagOption {
	return func() string {
		return "outcome:" + outcome
	}
}

// GetTags returns a slice of tags given a set of TagOptions
func GetTags(opts ...TagOption) []string {
	tags := make([]string, 0, len(opts))
	for _, opt := range opts {
		tags = append(tags, opt())
	}
	return tags
}
