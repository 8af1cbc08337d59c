package gradevue

import "fmt"

// A Document is a gradebook decoded into a generic tree: attributes are keys
// prefixed with attrPrefix, child elements are nested maps, repeated children
// are slices and empty elements are empty strings.
//
// The service collapses a list with one element into the element itself, so
// the same field may hold a map or a slice depending on how many children it had.
type Document map[string]any

const attrPrefix = "-"

type record map[string]any

// child returns the nested record stored under name. Missing keys, empty
// elements and non-record values all report false.
func (r record) child(name string) (record, bool) {
	switch v := r[name].(type) {
	case map[string]any:
		return record(v), true
	case record:
		return v, true
	case Document:
		return record(v), true
	}

	return nil, false
}

// children returns the records stored under name, in document order, whether
// the decoder kept them as a list or collapsed a single one.
func (r record) children(name string) []record {
	return records(r[name])
}

// attr reads the attribute name. An absent attribute is a *MissingFieldError;
// an empty one is the empty string.
func (r record) attr(name string) (string, error) {
	v, ok := r[attrPrefix+name]

	if !ok {
		return "", &MissingFieldError{Field: name}
	}

	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return fmt.Sprint(s), nil
	}
}

// records normalizes a singleton-or-list field to a slice. An empty element
// inside a list becomes an empty record so the mappers report which field is
// missing instead of silently dropping it.
func records(v any) []record {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return []record{record(t)}
	case record:
		return []record{t}
	case []any:
		rs := make([]record, 0, len(t))

		for _, e := range t {
			switch m := e.(type) {
			case map[string]any:
				rs = append(rs, record(m))
			case record:
				rs = append(rs, m)
			default:
				rs = append(rs, record{})
			}
		}

		return rs
	case []map[string]any:
		rs := make([]record, 0, len(t))

		for _, m := range t {
			rs = append(rs, record(m))
		}

		return rs
	}

	return nil
}
