package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTags(t *testing.T) {
	assert.Empty(t, GetTags())
	assert.Equal(t,
		[]string{"type:probe", "service:awaitctl", "alias:unnamed", "alias:db", "outcome:timeout"},
		GetTags(
			WithTypeTag("probe"),
			WithServiceTag("awaitctl"),
			WithAliasTag(""),
			WithAliasTag("db"),
			WithOutcomeTag("timeout"),
		),
	)
}
