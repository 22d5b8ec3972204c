package iterator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceIterator struct {
	items []int
	idx   int
}

func (s *sliceIterator) HasNext() bool {
	return s.idx < len(s.items)
}

func (s *sliceIterator) Next() (int, error) {
	if !s.HasNext() {
		return 0, fmt.Errorf("iterator is exhausted")
	}

	item := s.items[s.idx]
	s.idx++
	return item, nil
}

func TestCollect(t *testing.T) {
	{
		// Empty iterator
		items, err := Collect[int](&sliceIterator{})
		assert.NoError(t, err)
		assert.Empty(t, items)
	}
	{
		// Iterator with items
		items, err := Collect[int](&sliceIterator{items: []int{1, 2, 3}})
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, items)
	}
}
