package validate

import "testing"

func TestCheckID(t *testing.T) {
	if err := CheckID(GenerateID()); err != nil {
		t.Fatalf("generated ID should parse: %v", err)
	}

	for _, bad := range []string{"", "123", "not-a-uuid"} {
		if err := CheckID(bad); err == nil {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestCheckTranslatesFirstError(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}

	if err := Check(payload{}); err == nil {
		t.Fatal("expected an error for missing email")
	}
	if err := Check(payload{Email: "user@example.com"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}
