package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	s := &Service{lastHistoryID: make(map[string]uint64)}

	assert.False(t, s.isDuplicate("acc-1", 10))
	assert.True(t, s.isDuplicate("acc-1", 10))
	assert.True(t, s.isDuplicate("acc-1", 9))
	assert.False(t, s.isDuplicate("acc-1", 11))

	// Accounts are tracked independently
	assert.False(t, s.isDuplicate("acc-2", 5))
}
