package apiclient

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"testing"
)

func TestEncodeNestedQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"empty", map[string]any{}, ""},
		{"flat sorted", map[string]any{"b": "2", "a": 1}, "a=1&b=2"},
		{"escaping", map[string]any{"q": "a b&c=d"}, "q=a+b%26c%3Dd"},
		{"nil value", map[string]any{"flag": nil, "a": "x"}, "a=x&flag"},
		{"slice", map[string]any{"ids": []int{1, 2}}, "ids%5B%5D=1&ids%5B%5D=2"},
		{"nested map", map[string]any{"user": map[string]any{"name": "a", "age": 3}}, "user%5Bage%5D=3&user%5Bname%5D=a"},
		{
			"deep",
			map[string]any{"a": map[string]any{"b": []any{map[string]any{"c": "d"}}}},
			"a%5Bb%5D%5B%5D%5Bc%5D=d",
		},
		{"bool", map[string]any{"on": true}, "on=true"},
		{"typed map", map[string]any{"m": map[string]string{"k": "v"}}, "m%5Bk%5D=v"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeNestedQuery(tc.params); got != tc.want {
				t.Errorf("EncodeNestedQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

// Flat string maps must encode exactly like url.Values.
func TestEncodeNestedQuery_MatchesURLValues(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcXYZ 019&=?/+%é")
	randString := func() string {
		n := 1 + rng.Intn(6)
		r := make([]rune, n)
		for i := range r {
			r[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(r)
	}

	for i := 0; i < 200; i++ {
		params := map[string]any{}
		values := url.Values{}
		for j := 0; j < 1+rng.Intn(5); j++ {
			k, v := randString(), randString()
			params[k] = v
			values.Set(k, v)
		}
		if got, want := EncodeNestedQuery(params), values.Encode(); got != want {
			t.Fatalf("case %d: got %q, want %q", i, got, want)
		}
	}
}

func TestClient_BuildURI(t *testing.T) {
	c, err := New(Config{Domain: "api.example.com", Secure: true, Port: 8443})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		name  string
		path  string
		query map[string]any
		want  string
	}{
		{"plain", "/users", nil, "https://api.example.com:8443/users"},
		{"leading slash added", "users", nil, "https://api.example.com:8443/users"},
		{"query", "/users", map[string]any{"page": 2}, "https://api.example.com:8443/users?page=2"},
		{"existing query", "/users?sort=name", map[string]any{"page": 2}, "https://api.example.com:8443/users?sort=name&page=2"},
		{"empty query", "/users", map[string]any{}, "https://api.example.com:8443/users"},
		{"empty path", "", nil, "https://api.example.com:8443"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uri, err := c.BuildURI(tc.path, tc.query)
			if err != nil {
				t.Fatalf("BuildURI() error: %v", err)
			}
			if got := uri.String(); got != tc.want {
				t.Errorf("BuildURI() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClient_BuildURI_Malformed(t *testing.T) {
	c, err := New(Config{Domain: "api.example.com"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for _, path := range []string{"/%zz", "/bad%"} {
		t.Run(path, func(t *testing.T) {
			_, err := c.BuildURI(path, nil)
			if !IsURI(err) {
				t.Errorf("expected uri error, got %v", err)
			}
		})
	}

	// a malformed path never reaches the transport
	_, err = c.Get(context.Background(), "/%zz", nil)
	if !IsURI(err) {
		t.Errorf("Get: expected uri error, got %v", err)
	}
}

func ExampleEncodeNestedQuery() {
	fmt.Println(EncodeNestedQuery(map[string]any{
		"user": map[string]any{"name": "ann"},
		"ids":  []int{1, 2},
		"flag": nil,
	}))
	// Output: flag&ids%5B%5D=1&ids%5B%5D=2&user%5Bname%5D=ann
}
