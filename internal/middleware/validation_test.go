package middleware

import (
	"strings"
	"testing"
)

func TestValidatePostID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid short", "p-20260901-0042", "p-20260901-0042", false},
		{"valid with underscore", "abc-def_123", "abc-def_123", false},
		{"trims whitespace", "  abc  ", "abc", false},
		{"empty", "", "", true},
		{"too long 65", strings.Repeat("a", 65), "", true},
		{"exactly 64", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"invalid chars", "abc def", "", true},
		{"sql injection", "a'; DROP--", "", true},
		{"unicode", "abcédef", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidatePostID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestValidateSubjectID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid user id", "u_48210", "u_48210", false},
		{"valid page id", "page-climate-watch", "page-climate-watch", false},
		{"empty", "", "", true},
		{"too long 65", strings.Repeat("b", 65), "", true},
		{"exactly 64", strings.Repeat("b", 64), strings.Repeat("b", 64), false},
		{"invalid chars", "user!42", "", true},
		{"path traversal", "../etc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateSubjectID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
