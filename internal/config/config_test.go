package config

import (
	"reflect"
	"testing"
)

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"http://localhost:3000", []string{"http://localhost:3000"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,c ", []string{"a", "b", "c"}},
		{"a,,c,", []string{"a", "c"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := parseStringSlice(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseStringSlice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
