package http

import "strings"

type HeaderField struct {
	Name  string
	Value string
}

// Headers is an insertion-ordered header set. Name comparison is
// case-insensitive; setting an existing name overwrites the value in place,
// so a later duplicate wins without losing the original position.
type Headers struct {
	fields []HeaderField
}

func (headers *Headers) Set(name, value string) {
	for i := range headers.fields {
		if strings.EqualFold(headers.fields[i].Name, name) {
			headers.fields[i].Value = value
			return
		}
	}

	headers.fields = append(headers.fields, HeaderField{Name: name, Value: value})
}

func (headers *Headers) Get(name string) (string, bool) {
	for i := range headers.fields {
		if strings.EqualFold(headers.fields[i].Name, name) {
			return headers.fields[i].Value, true
		}
	}

	return "", false
}

func (headers *Headers) Len() int {
	return len(headers.fields)
}

// Fields exposes the underlying slice in insertion order. Callers must not
// mutate it.
func (headers *Headers) Fields() []HeaderField {
	return headers.fields
}

func (headers *Headers) Reset() {
	headers.fields = headers.fields[:0]
}
