package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/npezzotti/go-hostly/internal/query"
)

const maxJsonBody = 1 << 20

var errNotAnObject = errors.New("request body must be a JSON object")

// decodeChanges reads a JSON object into an ordered change list, keeping the
// keys in the order the client sent them. Numbers stay json.Number so the
// repository decides how to interpret them.
func decodeChanges(r io.Reader) (query.Changes, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errNotAnObject
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotAnObject
	}

	changes := make(query.Changes, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		field, ok := tok.(string)
		if !ok {
			return nil, errNotAnObject
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("read value of %q: %w", field, err)
		}
		changes = append(changes, query.Assignment{Field: field, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read end of object: %w", err)
	}
	if dec.More() {
		return nil, errNotAnObject
	}

	return changes, nil
}

// filtersFromQuery turns every non-blank query parameter into a filter
// entry. Unrecognized keys are ignored by the predicate set.
func filtersFromQuery(values url.Values) query.Filters {
	filters := make(query.Filters, len(values))
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		filters[key] = vals[0]
	}

	return filters
}

func decodeJsonBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJsonBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewBadRequestError()
	}
	return nil
}
