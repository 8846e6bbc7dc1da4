package helpers

import "testing"

func TestParseSingleAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"user@example.com", false},
		{"Eirik <user@example.com>", false},
		{"user+detail@example.com", false},
		{"", true},
		{"   ", true},
		{"not an address", true},
		{"a@b.c, d@e.f", true},
		{"@example.com", true},
		{"user@", true},
	}
	for _, tt := range tests {
		err := ParseSingleAddress(tt.addr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSingleAddress(%q) = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}
