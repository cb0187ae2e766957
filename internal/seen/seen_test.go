package seen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAddAndHas(t *testing.T) {
	set := NewSet()
	assert.False(t, set.Has(Booked, "Doe|John|01/02/2024|123"))

	assert.True(t, set.Add(Booked, "Doe|John|01/02/2024|123"))
	assert.True(t, set.Has(Booked, "Doe|John|01/02/2024|123"))

	// Buckets are independent.
	assert.False(t, set.Has(Released, "Doe|John|01/02/2024|123"))

	// Re-adding is a no-op.
	assert.False(t, set.Add(Booked, "Doe|John|01/02/2024|123"))
	assert.Equal(t, 1, set.Len(Booked))
}

func TestSetMarshalPreservesInsertionOrder(t *testing.T) {
	set := NewSet()
	set.Add(Booked, "c")
	set.Add(Booked, "a")
	set.Add(Booked, "b")
	set.Add(Released, "z")

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"booked":["c","a","b"],"released":["z"]}`, string(data))
}

func TestSetMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewSet())
	require.NoError(t, err)
	assert.JSONEq(t, `{"booked":[],"released":[]}`, string(data))
}

func TestSetUnmarshal(t *testing.T) {
	set := NewSet()
	err := json.Unmarshal([]byte(`{"booked":["a","b","a"],"released":[]}`), set)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len(Booked))
	assert.Equal(t, 0, set.Len(Released))
	assert.True(t, set.Has(Booked, "a"))
	assert.Equal(t, []string{"a", "b"}, set.Fingerprints(Booked))
}
