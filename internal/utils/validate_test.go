package utils

import (
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	valid := []string{"Asha Verma", "Jean-Luc", "O'Brien", "Maria d. Silva", "Ümit", "  Padded  "}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("%q should be accepted: %v", name, err)
		}
	}
	invalid := []string{"", "A", "1234", "-leading dash", "name! with bang"}
	for _, name := range invalid {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("%q should be rejected, got %v", name, err)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	valid := []string{"+4917612345678", "017612345678", "98765 43210", "555-867-5309"}
	for _, phone := range valid {
		if err := ValidatePhone(phone); err != nil {
			t.Errorf("%q should be accepted: %v", phone, err)
		}
	}
	invalid := []string{"", "12345", "phone", "++491761234567", "+49 176 1234 5678 9012 34"}
	for _, phone := range invalid {
		if err := ValidatePhone(phone); !errors.Is(err, ErrInvalidPhone) {
			t.Errorf("%q should be rejected, got %v", phone, err)
		}
	}
}

func TestValidateCartValue(t *testing.T) {
	t.Parallel()

	if err := ValidateCartValue(0); err != nil {
		t.Errorf("zero cart should be accepted: %v", err)
	}
	if err := ValidateCartValue(129900); err != nil {
		t.Errorf("positive cart should be accepted: %v", err)
	}
	if err := ValidateCartValue(-1); !errors.Is(err, ErrInvalidCartValue) {
		t.Errorf("negative cart should be rejected, got %v", err)
	}
}
