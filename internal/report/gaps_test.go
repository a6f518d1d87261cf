package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectGaps(t *testing.T) {
	t.Run("shared prefix", func(t *testing.T) {
		result := DetectGaps([]string{"A001", "A003", "A005"})
		assert.Equal(t, []string{"A002", "A004"}, result.Missing)
		assert.False(t, result.PrefixAmbiguous)
	})

	t.Run("no prefix", func(t *testing.T) {
		result := DetectGaps([]string{"2024001", "2024004"})
		assert.Equal(t, []string{"2024002", "2024003"}, result.Missing)
	})

	t.Run("padding follows width of max", func(t *testing.T) {
		result := DetectGaps([]string{"INV8", "INV11"})
		assert.Equal(t, []string{"INV09", "INV10"}, result.Missing)
	})

	t.Run("leading zeros of max set the width", func(t *testing.T) {
		result := DetectGaps([]string{"0008", "0011"})
		assert.Equal(t, []string{"0009", "0010"}, result.Missing)
	})

	t.Run("contiguous sequence has no gaps", func(t *testing.T) {
		result := DetectGaps([]string{"A001", "A002", "A003"})
		assert.Empty(t, result.Missing)
	})

	t.Run("fewer than two numeric entries", func(t *testing.T) {
		assert.Empty(t, DetectGaps(nil).Missing)
		assert.Empty(t, DetectGaps([]string{"A001"}).Missing)
		assert.Empty(t, DetectGaps([]string{"A001", "draft"}).Missing)
	})

	t.Run("non-numeric entries are ignored", func(t *testing.T) {
		result := DetectGaps([]string{"A001", "draft", "A003", "A-1-B"})
		assert.Equal(t, []string{"A002"}, result.Missing)
	})

	t.Run("mixed prefixes drop the prefix", func(t *testing.T) {
		result := DetectGaps([]string{"A001", "B003"})
		assert.Equal(t, []string{"002"}, result.Missing)
		assert.True(t, result.PrefixAmbiguous)
	})
}
