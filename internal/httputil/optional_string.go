package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes the three states a JSON PATCH field can be in:
//   - Present=false: the key was absent (leave unchanged)
//   - Present=true, Value=nil: the key was null (clear)
//   - Present=true, Value!=nil: the key carried a string
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
