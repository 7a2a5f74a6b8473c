package order

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway creates orders at the payment provider. The returned body is
// the provider's raw order object, passed through to the client as-is.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int, currency string, receipt string) (map[string]interface{}, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID string, keySecret string) Gateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder requests an order for amount expressed in the currency's
// smallest subunit (paise for INR).
func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int, currency string, receipt string) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}

	return body, nil
}
