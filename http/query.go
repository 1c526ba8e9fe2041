package http

import "strings"

type QueryPair struct {
	Key   string
	Value string
}

// QueryValues holds decoded query parameters in first-seen order. Keys are
// case-sensitive; a repeated key overwrites the earlier value in place.
type QueryValues struct {
	pairs []QueryPair
}

func (values *QueryValues) set(key, value string) {
	for i := range values.pairs {
		if values.pairs[i].Key == key {
			values.pairs[i].Value = value
			return
		}
	}

	values.pairs = append(values.pairs, QueryPair{Key: key, Value: value})
}

func (values *QueryValues) Get(key string) (string, bool) {
	for i := range values.pairs {
		if values.pairs[i].Key == key {
			return values.pairs[i].Value, true
		}
	}

	return "", false
}

func (values *QueryValues) Len() int {
	return len(values.pairs)
}

func (values *QueryValues) Pairs() []QueryPair {
	return values.pairs
}

// ParseQuery decodes a raw URL-encoded query fragment. Empty segments are
// skipped; a segment without '=' becomes a key with an empty value.
func ParseQuery(raw string) QueryValues {
	var values QueryValues

	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}

		key, value, _ := strings.Cut(segment, "=")
		values.set(unescape(key, true), unescape(value, true))
	}

	return values
}

// UnescapePath percent-decodes a URL path. '+' is left alone here; it is only
// a space inside query fragments.
func UnescapePath(s string) string {
	return unescape(s, false)
}

func unescape(s string, plusIsSpace bool) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s):
			hi := hexToByte(s[i+1])
			lo := hexToByte(s[i+2])
			if hi == 255 || lo == 255 {
				b.WriteByte(c)
				continue
			}
			b.WriteByte(hi<<4 | lo)
			i += 2
		case c == '+' && plusIsSpace:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func hexToByte(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 255
}
