package hwtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuiteContents(t *testing.T) {
	suite := Suite()
	require.Len(t, suite, 3)

	names := make([]string, 0, len(suite))
	for _, test := range suite {
		names = append(names, test.Name())
		assert.Contains(t, test.SupportedBoards(), "nrf52840dk")
	}
	assert.Equal(t, []string{"aes_ecb_known_answer", "aes_ecb_in_place", "aes_ecb_throughput"}, names)
}

func TestAESTestsPass(t *testing.T) {
	for _, test := range Suite() {
		t.Run(test.Name(), func(t *testing.T) {
			require.NoError(t, test.Run())
		})
	}
}
