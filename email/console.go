package email

import (
	"github.com/sirupsen/logrus"
)

// Console logs mail instead of sending it. Used in tests and local runs
// without a sendgrid key.
type Console struct {
	Log logrus.FieldLogger
}

func (c *Console) log(kind string, to string, fields logrus.Fields) error {
	fields["to"] = to
	c.Log.WithFields(fields).Infof("email: %s", kind)
	return nil
}

func (c *Console) SendCourseEnrollment(to string, name string, courseName string) error {
	return c.log("course enrollment", to, logrus.Fields{"course": courseName})
}

func (c *Console) SendPaymentSuccess(to string, name string, amount int, orderID string, paymentID string) error {
	return c.log("payment success", to, logrus.Fields{
		"amount":  amount,
		"order":   orderID,
		"payment": paymentID,
	})
}

func (c *Console) SendActivationToken(to string, token string) error {
	return c.log("activation token", to, logrus.Fields{"token": token})
}

func (c *Console) SendRecoveryToken(to string, token string) error {
	return c.log("recovery token", to, logrus.Fields{"token": token})
}
