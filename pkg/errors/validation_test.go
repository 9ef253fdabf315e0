package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "7f8c2b0e-2c1e-4f55-9d7a-0c1f2a3b4c5d", false},
		{"short", "w1", false},
		{"ticker default", "ticker-default", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"space", "w 1", true},
		{"newline", "w\n1", true},
		{"null byte", "w\x001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWidgetType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "clock", false},
		{"dashed", "news-ticker", false},
		{"digits", "qr2", false},

		{"empty", "", true},
		{"uppercase", "Clock", true},
		{"trailing dash", "clock-", true},
		{"underscore", "news_ticker", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWidgetType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWidgetType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"https://example.com/a.png", false},
		{"http://example.com", false},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"example.com", true},
		{"https://", true},
		{"https://exa mple.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateURL(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#fff", false},
		{"#0f172a", false},
		{"#0F172AFF", false},
		{"", true},
		{"red", true},
		{"#12345", true},
		{"0f172a", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
