package order

import (
	"testing"

	"github.com/irsalhamdi/studynotion-api/validate"
)

func TestVerificationRequiresAllFields(t *testing.T) {
	courses := []string{validate.GenerateID()}

	full := Verification{
		OrderID:   "order_123",
		PaymentID: "pay_456",
		Signature: "deadbeef",
		Courses:   courses,
	}
	if err := validate.Check(full); err != nil {
		t.Fatalf("complete verification should validate: %v", err)
	}

	cases := map[string]Verification{
		"missing order id":   {PaymentID: "pay_456", Signature: "deadbeef", Courses: courses},
		"missing payment id": {OrderID: "order_123", Signature: "deadbeef", Courses: courses},
		"missing signature":  {OrderID: "order_123", PaymentID: "pay_456", Courses: courses},
		"missing courses":    {OrderID: "order_123", PaymentID: "pay_456", Signature: "deadbeef"},
		"empty courses":      {OrderID: "order_123", PaymentID: "pay_456", Signature: "deadbeef", Courses: []string{}},
		"malformed course":   {OrderID: "order_123", PaymentID: "pay_456", Signature: "deadbeef", Courses: []string{"not-a-uuid"}},
	}

	for name, v := range cases {
		if err := validate.Check(v); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}

func TestCheckoutNewValidation(t *testing.T) {
	if err := validate.Check(CheckoutNew{}); err == nil {
		t.Error("missing courses should be rejected")
	}
	if err := validate.Check(CheckoutNew{Courses: []string{}}); err == nil {
		t.Error("empty courses should be rejected")
	}
	if err := validate.Check(CheckoutNew{Courses: []string{validate.GenerateID()}}); err != nil {
		t.Errorf("valid checkout rejected: %v", err)
	}
}
