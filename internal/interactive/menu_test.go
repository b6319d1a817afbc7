package interactive

import (
	"testing"

	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/stretchr/testify/assert"
)

func TestPickByLabel(t *testing.T) {
	t.Parallel()

	defs := []*testdef.TestDefinition{
		{Name: "users present"},
		{Name: "no null names"},
		{Name: "users present"},
	}

	labels := testLabels(defs)
	assert.Equal(t, []string{"1. users present", "2. no null names", "3. users present"}, labels)

	chosen := pickByLabel(defs, []string{labels[2], labels[0]})
	assert.Equal(t, []*testdef.TestDefinition{defs[0], defs[2]}, chosen)

	assert.Empty(t, pickByLabel(defs, nil))
	assert.Empty(t, pickByLabel(defs, []string{"4. unknown"}))
}
