package errors

import (
	"strings"
	"testing"
)

func TestValidatePicture(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"jpg", "1042.jpg", false},
		{"jpeg", "7.jpeg", false},
		{"png", "12.png", false},
		{"webp", "3.webp", false},
		{"decimal", "1.5.jpg", false},

		{"empty", "", true},
		{"path", "img/12.jpg", true},
		{"backslash", "img\\12.jpg", true},
		{"not numeric", "kitchen.jpg", true},
		{"gif", "12.gif", true},
		{"no extension", "12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePicture(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePicture(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidManifest) {
				t.Errorf("ValidatePicture(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidManifest)
			}
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ascii", "Kitchen", false},
		{"chinese", "客厅", false},
		{"map", "map", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 129), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoomName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoomName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "tours/house.json", false},
		{"absolute", "/var/lib/vrtour/house.json", false},
		{"dotted name", "house..json", false},

		{"empty", "", true},
		{"traversal", "tours/../../etc/passwd", true},
		{"null byte", "house\x00.json", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"url", "https://tour.example.com/house/12", false},
		{"path", "testdata/house.json", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com/house.json", true},
		{"traversal", "../secret.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
