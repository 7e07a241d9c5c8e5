package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/leg100/lastquery/internal"
)

const (
	emailField     = "email"
	timestampField = "timestamp"
)

// Record is the query most recently submitted by a user: an email address
// plus whatever other fields the user supplied, and a timestamp assigned on
// save.
type Record map[string]any

// newRecord constructs a record from the fields of a request body. The
// email field must be present and truthy. Any timestamp supplied by the
// caller is overwritten.
func newRecord(fields map[string]any, now time.Time) (Record, error) {
	if !truthy(fields[emailField]) {
		return nil, &internal.ErrMissingParameter{Parameter: emailField}
	}
	rec := make(Record, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec[timestampField] = now.Format(internal.ISO8601)
	return rec, nil
}

// Email returns the record's email address.
func (r Record) Email() string {
	s, _ := r[emailField].(string)
	return s
}

// timestamp returns the time at which the record was saved.
func (r Record) timestamp() (time.Time, error) {
	s, ok := r[timestampField].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("record has no %s field", timestampField)
	}
	return time.Parse(time.RFC3339Nano, s)
}

// decodeFields decodes a request body into a map of fields. A body that is
// valid JSON but not an object yields an empty set of fields, which then
// fails validation for lack of an email. An empty or null body is an error.
func decodeFields(r io.Reader) (map[string]any, error) {
	var v any
	if err := newDecoder(r).Decode(&v); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("request body is empty")
		}
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	switch body := v.(type) {
	case nil:
		return nil, fmt.Errorf("request body is null")
	case map[string]any:
		return body, nil
	default:
		return map[string]any{}, nil
	}
}

// unmarshalRecord decodes a record as persisted by a store. A nil result
// indicates the store held an empty value.
func unmarshalRecord(b []byte) (Record, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var rec Record
	if err := newDecoder(bytes.NewReader(b)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding stored record: %w", err)
	}
	if len(rec) == 0 {
		return nil, nil
	}
	return rec, nil
}

// newDecoder returns a decoder that keeps numbers verbatim rather than
// converting them to float64.
func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// truthy reports whether a decoded JSON value counts as provided: null,
// false, zero and the empty string do not.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return true
		}
		return f != 0 && !math.IsNaN(f)
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}
