package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch(t *testing.T) {
	body := `[
		{"name": "Apple", "quantity": 2, "unit": "kg", "type": "Fruit"},
		{"name": "Carrot", "quantity": 150.5, "type": "Vegetable"},
		{"name": null, "quantity": null}
	]`

	items, err := ParseBatch([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Apple", *items[0].Name)
	assert.Equal(t, 2.0, *items[0].Quantity)
	assert.Equal(t, "kg", *items[0].Unit)
	assert.Equal(t, "Fruit", *items[0].Type)

	assert.Nil(t, items[1].Unit)
	assert.Equal(t, 150.5, *items[1].Quantity)

	assert.Nil(t, items[2].Name)
	assert.Nil(t, items[2].Quantity)
	assert.Nil(t, items[2].Type)
}

func TestParseBatch_EmptyArray(t *testing.T) {
	items, err := ParseBatch([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseBatch_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		index    int
		property string
	}{
		{"not json", `{{`, -1, ""},
		{"object instead of array", `{"name": "Apple"}`, -1, ""},
		{"null body", `null`, -1, ""},
		{"item not object", `[{"name": "Apple", "quantity": 1, "type": "fruit"}, 5]`, 1, ""},
		{"unknown field", `[{"name": "Apple", "colour": "red"}]`, 0, "colour"},
		{"quantity as string", `[{"name": "Apple", "quantity": "2"}]`, 0, "quantity"},
		{"name as number", `[{"name": 7}]`, 0, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch([]byte(tt.body))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.index, pe.Index)
			assert.Equal(t, tt.property, pe.Property)
			assert.Equal(t, CodeMalformed, pe.Violation().Code)
		})
	}
}

func TestParseError_Violation(t *testing.T) {
	v := (&ParseError{Index: 2, Property: "quantity", Message: "expected a number"}).Violation()
	assert.Equal(t, "[2].quantity", v.Property)

	v = (&ParseError{Index: 1, Message: "expected a JSON object"}).Violation()
	assert.Equal(t, "[1]", v.Property)

	v = (&ParseError{Index: -1, Message: "expected a JSON array of food items"}).Violation()
	assert.Equal(t, "", v.Property)
}
