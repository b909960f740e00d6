package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Endpoint returns scheme://domain[:port] for this client.
func (c *Client) Endpoint() string {
	return c.config.Endpoint()
}

// BuildURI joins path onto the endpoint and appends query as a nested
// query string. A path without a leading slash gets one.
func (c *Client) BuildURI(path string, query map[string]any) (*url.URL, error) {
	if path != "" && !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "?") {
		path = "/" + path
	}
	if len(query) > 0 {
		if encoded := EncodeNestedQuery(query); encoded != "" {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			path += sep + encoded
		}
	}

	raw := c.Endpoint() + path
	uri, err := url.Parse(raw)
	if err != nil {
		return nil, newError(ErrCodeURI, err)
	}
	if uri.Host == "" {
		return nil, &Error{Code: ErrCodeURI, Message: fmt.Sprintf("no host in %q", raw)}
	}
	return uri, nil
}

// EncodeNestedQuery form-encodes params using bracket notation for nesting:
//
//	{"user": {"name": "a"}, "ids": [1, 2], "flag": nil}
//	=> flag&ids%5B%5D=1&ids%5B%5D=2&user%5Bname%5D=a
//
// Map keys are emitted in sorted order. A nil value produces a bare key.
func EncodeNestedQuery(params map[string]any) string {
	return strings.Join(appendNested(nil, "", reflect.ValueOf(params)), "&")
}

func appendNested(dst []string, prefix string, v reflect.Value) []string {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			break
		}
		v = v.Elem()
	}

	if !v.IsValid() || ((v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) && v.IsNil()) {
		if prefix == "" {
			return dst
		}
		return append(dst, url.QueryEscape(prefix))
	}

	switch v.Kind() {
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		values := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := k
			if prefix != "" {
				name = prefix + "[" + k + "]"
			}
			dst = appendNested(dst, name, values[k])
		}
		return dst
	case reflect.Slice, reflect.Array:
		if b, ok := v.Interface().([]byte); ok {
			return append(dst, url.QueryEscape(prefix)+"="+url.QueryEscape(string(b)))
		}
		for i := 0; i < v.Len(); i++ {
			dst = appendNested(dst, prefix+"[]", v.Index(i))
		}
		return dst
	default:
		if prefix == "" {
			return dst
		}
		return append(dst, url.QueryEscape(prefix)+"="+url.QueryEscape(fmt.Sprint(v.Interface())))
	}
}
