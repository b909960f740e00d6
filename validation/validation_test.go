package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Domain     string `mapstructure:"domain" validate:"required"`
	Port       int    `mapstructure:"port" validate:"min=0,max=65535"`
	VerifyMode string `mapstructure:"verify_mode" validate:"omitempty,oneof=verify_peer verify_none"`
	PoolSize   int    `validate:"min=1"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{"valid", sample{Domain: "api.example.com", Port: 443, PoolSize: 1}, nil},
		{"missing domain", sample{PoolSize: 1}, []string{"domain"}},
		{"port out of range", sample{Domain: "x", Port: 70000, PoolSize: 1}, []string{"port"}},
		{"bad verify mode", sample{Domain: "x", VerifyMode: "maybe", PoolSize: 1}, []string{"verify_mode"}},
		{"untagged name is snake cased", sample{Domain: "x"}, []string{"pool_size"}},
		{"several", sample{Port: -1}, []string{"domain", "port", "pool_size"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in)
			if len(tc.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if len(verr.Fields) != len(tc.wantFields) {
				t.Fatalf("expected %d field errors, got %+v", len(tc.wantFields), verr.Fields)
			}
			for i, f := range tc.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("field %d: expected %q, got %q", i, f, verr.Fields[i].Field)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Struct(sample{PoolSize: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "domain: is required") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"CAFile":   "c_a_file",
		"Domain":   "domain",
		"PoolSize": "pool_size",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
