// Package json provides helpers for the encoding/json package.
package json

import "encoding/json"

// MustMarshal is like json.Marshal but panics if v cannot be encoded.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err.Error())
	}
	return b
}
