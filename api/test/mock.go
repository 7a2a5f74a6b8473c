package test

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// mockGateway stands in for the payment provider, recording the order
// requests the API makes.
type mockGateway struct {
	mu           sync.Mutex
	calls        int
	lastAmount   int
	lastCurrency string
	lastReceipt  string
}

func (g *mockGateway) CreateOrder(ctx context.Context, amount int, currency string, receipt string) (map[string]interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	g.lastAmount = amount
	g.lastCurrency = currency
	g.lastReceipt = receipt

	return map[string]interface{}{
		"id":       fmt.Sprintf("order_test_%d", g.calls),
		"entity":   "order",
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"status":   "created",
	}, nil
}

func (g *mockGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *mockGateway) LastOrder() (amount int, currency string, receipt string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAmount, g.lastCurrency, g.lastReceipt
}

// recordMailer captures outbound mail. Dispatch happens on background
// goroutines, so reads go through the Wait helpers.
type recordMailer struct {
	mu          sync.Mutex
	enrollments []string
	payments    []int
	activations map[string]string
	recoveries  map[string]string
}

func newRecordMailer() *recordMailer {
	return &recordMailer{
		activations: make(map[string]string),
		recoveries:  make(map[string]string),
	}
}

func (m *recordMailer) SendCourseEnrollment(email string, name string, courseName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments = append(m.enrollments, courseName)
	return nil
}

func (m *recordMailer) SendPaymentSuccess(email string, name string, amount int, orderID string, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, amount)
	return nil
}

func (m *recordMailer) SendActivationToken(email string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations[email] = token
	return nil
}

func (m *recordMailer) SendRecoveryToken(email string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoveries[email] = token
	return nil
}

func (m *recordMailer) WaitActivation(email string, timeout time.Duration) string {
	return m.waitToken(m.activations, email, timeout)
}

func (m *recordMailer) WaitRecovery(email string, timeout time.Duration) string {
	return m.waitToken(m.recoveries, email, timeout)
}

func (m *recordMailer) waitToken(tokens map[string]string, email string, timeout time.Duration) string {
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		tok, ok := tokens[email]
		m.mu.Unlock()
		if ok || time.Now().After(deadline) {
			return tok
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (m *recordMailer) WaitEnrollments(n int, timeout time.Duration) []string {
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		if len(m.enrollments) >= n || time.Now().After(deadline) {
			out := make([]string, len(m.enrollments))
			copy(out, m.enrollments)
			m.mu.Unlock()
			return out
		}
		m.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

func (m *recordMailer) WaitPayments(n int, timeout time.Duration) []int {
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		if len(m.payments) >= n || time.Now().After(deadline) {
			out := make([]int, len(m.payments))
			copy(out, m.payments)
			m.mu.Unlock()
			return out
		}
		m.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}
