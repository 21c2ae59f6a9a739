package apiclient

import (
	"bytes"
	"encoding/json"
)

// Envelope is a response body exactly as the server sent it. The client only
// checks that it is well-formed JSON; callers decode it into whatever shape
// they expect.
type Envelope []byte

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (e Envelope) Decode(v any) error {
	if len(e) == 0 {
		return nil
	}
	return json.Unmarshal(e, v)
}

// Value decodes the body into a generic JSON value. Numbers are kept as
// json.Number so they round-trip unchanged.
func (e Envelope) Value() (any, error) {
	if len(e) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(e))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalJSON embeds the body verbatim.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return []byte(e), nil
}

// UnmarshalJSON stores a copy of the raw value.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	*e = append((*e)[:0], data...)
	return nil
}

func (e Envelope) String() string { return string(e) }
