package order

import "time"

type Status string

const (
	Pending Status = "pending"
	Success Status = "success"
	Expired Status = "expired"
)

const Currency = "INR"

type Order struct {
	ID         string    `json:"id" db:"order_id"`
	UserID     string    `json:"userId" db:"user_id"`
	ProviderID string    `json:"providerId" db:"provider_id"`
	Status     Status    `json:"status" db:"status"`
	Amount     int       `json:"amount" db:"amount"`
	Currency   string    `json:"currency" db:"currency"`
	Receipt    string    `json:"receipt" db:"receipt"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

type StatusUp struct {
	ID        string    `db:"order_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Item struct {
	OrderID   string    `json:"orderId" db:"order_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Price     int       `json:"price" db:"price"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CheckoutNew is the body of a checkout request: the courses to buy.
type CheckoutNew struct {
	Courses []string `json:"courses" validate:"required,min=1,dive,uuid"`
}

// Verification carries the gateway callback fields the client relays
// after completing payment. All of them are required.
type Verification struct {
	OrderID   string   `json:"razorpay_order_id" validate:"required"`
	PaymentID string   `json:"razorpay_payment_id" validate:"required"`
	Signature string   `json:"razorpay_signature" validate:"required"`
	Courses   []string `json:"courses" validate:"required,min=1,dive,uuid"`
}

// PaymentNotice is the body of the post-payment notification request.
type PaymentNotice struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Amount    int    `json:"amount" validate:"required,gt=0"`
}
