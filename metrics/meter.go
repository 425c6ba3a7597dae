package metrics

// Meter tracks a count of a metric. Tags passed to the counting methods are
// appended to the tags the meter was created with.
type Meter struct {
	client Client
	name   string
	tags   []string
}

// NewMeter returns a new meter
func NewMeter(client Client, name string, tagOptions ...TagOption) (*Meter, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	return &Meter{
		client: client,
		name:   name,
		tags:   GetTags(tagOptions...),
	}, nil
}

// Name returns the name of the metric.
func (m *Meter) Name() string {
	return m.name
}

// Count adds the provided value to the metric's count
func (m *Meter) Count(value int64, tags ...TagOption) {
	_ = m.client.Count(m.name, value, m.withTags(tags))
}

// Incr adds 1 to the metric's count
func (m *Meter) Incr(tags ...TagOption) {
	m.Count(1, tags...)
}

// Decr subtracts 1 from the metric's count
func (m *Meter) Decr(tags ...TagOption) {
	m.Count(-1, tags...)
}

func (m *Meter) withTags(additional []TagOption) []string {
	if len(additional) == 0 {
		return m.tags
	}

	tags := make([]string, 0, len(m.tags)+len(additional))
	tags = append(tags, m.tags...)
	return append(tags, GetTags(additional...)...)
}
