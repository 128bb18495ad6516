package validation

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ParseError reports a batch body whose shape is not a list of food objects.
// Index is -1 when the body as a whole is wrong.
type ParseError struct {
	Index    int
	Property string
	Message  string
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return "parse batch: " + e.Message
	}
	return fmt.Sprintf("parse batch: item %d: %s", e.Index, e.Message)
}

// Violation renders the error as a field violation, e.g. "[2].quantity".
func (e *ParseError) Violation() Violation {
	path := e.Property
	if e.Index >= 0 {
		path = fmt.Sprintf("[%d]", e.Index)
		if e.Property != "" {
			path += "." + e.Property
		}
	}
	return Violation{Property: path, Message: e.Message, Code: CodeMalformed}
}

// ParseBatch decodes a JSON array of {name, quantity, unit, type} objects.
// Keys are mapped explicitly; unknown keys and values of the wrong JSON type
// are rejected. Missing keys and nulls are left for Validate to report.
func ParseBatch(data []byte) ([]RawItem, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, &ParseError{Index: -1, Message: "expected a JSON array of food items"}
	}

	items := make([]RawItem, len(elems))
	for i, elem := range elems {
		item, err := parseItem(i, elem)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func parseItem(index int, data json.RawMessage) (RawItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return RawItem{}, &ParseError{Index: index, Message: "expected a JSON object"}
	}

	var (
		item RawItem
		err  error
	)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		raw := fields[key]
		switch key {
		case PropertyName:
			item.Name, err = decodeOptional[string](raw)
		case PropertyQuantity:
			item.Quantity, err = decodeOptional[float64](raw)
		case PropertyUnit:
			item.Unit, err = decodeOptional[string](raw)
		case PropertyType:
			item.Type, err = decodeOptional[string](raw)
		default:
			return RawItem{}, &ParseError{Index: index, Property: key, Message: "unknown field"}
		}
		if err != nil {
			return RawItem{}, &ParseError{Index: index, Property: key, Message: err.Error()}
		}
	}
	return item, nil
}

func decodeOptional[T string | float64](raw json.RawMessage) (*T, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		switch any(zero).(type) {
		case string:
			return nil, fmt.Errorf("expected a string")
		default:
			return nil, fmt.Errorf("expected a number")
		}
	}
	return &v, nil
}
