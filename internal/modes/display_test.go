package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayIndexNextWraps(t *testing.T) {
	var d DisplayIndex
	got := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		got = append(got, d.Next())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 0, 1}, got)
}

func TestDisplayIndexPrevWraps(t *testing.T) {
	var d DisplayIndex
	got := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		got = append(got, d.Prev())
	}
	assert.Equal(t, []int{4, 3, 2, 1, 0, 4}, got)
}
