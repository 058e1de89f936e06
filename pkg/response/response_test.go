package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	body, err := json.Marshal(Success(200, map[string]int{"id": 3}))
	require.NoError(t, err)

	raw, ok := Parse(body)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, raw.Status)
	assert.JSONEq(t, `{"id":3}`, string(raw.Data))

	body, err = json.Marshal(Error(404, "item not found"))
	require.NoError(t, err)
	raw, ok = Parse(body)
	require.True(t, ok)
	assert.Equal(t, "item not found", raw.Error)
	assert.Empty(t, raw.Data)

	_, ok = Parse([]byte(`{"token":"abc"}`))
	assert.False(t, ok)
	_, ok = Parse([]byte(`<html>`))
	assert.False(t, ok)
}
