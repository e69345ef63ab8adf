package model

import (
	"errors"
	"io"
	"testing"
)

func TestError_IsKindAndCause(t *testing.T) {
	err := ProcessingFailure("inference failed", io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrProcessingFailure) {
		t.Error("Expected error to match ErrProcessingFailure")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Expected error to match its cause")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("Error should not match an unrelated kind")
	}

	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Message != "inference failed" {
		t.Errorf("errors.As should expose the message, got %+v", appErr)
	}
}

func TestError_WithoutCause(t *testing.T) {
	err := InvalidInput("File must be an image")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput")
	}
	if err.Error() != "invalid input: File must be an image" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected Language
		wantErr  bool
	}{
		{"", LanguageEnglish, false},
		{"en", LanguageEnglish, false},
		{"KG", LanguageKyrgyz, false},
		{" ru ", LanguageRussian, false},
		{"de", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLanguage(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestMeaningEntry_Meaning(t *testing.T) {
	entry := MeaningEntry{Name: "unity", MeaningEN: "The Unity Ornament", MeaningKG: "Биримдик оймо", MeaningRU: "Орнамент «Единство»"}

	if entry.Meaning(LanguageEnglish) != "The Unity Ornament" {
		t.Error("English meaning mismatch")
	}
	if entry.Meaning(LanguageKyrgyz) != "Биримдик оймо" {
		t.Error("Kyrgyz meaning mismatch")
	}
	if entry.Meaning(LanguageRussian) != "Орнамент «Единство»" {
		t.Error("Russian meaning mismatch")
	}
}
