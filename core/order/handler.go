package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/studynotion-api/api/background"
	"github.com/irsalhamdi/studynotion-api/api/web"
	"github.com/irsalhamdi/studynotion-api/api/weberr"
	"github.com/irsalhamdi/studynotion-api/core/cart"
	"github.com/irsalhamdi/studynotion-api/core/claims"
	"github.com/irsalhamdi/studynotion-api/core/course"
	"github.com/irsalhamdi/studynotion-api/core/progress"
	"github.com/irsalhamdi/studynotion-api/core/user"
	"github.com/irsalhamdi/studynotion-api/database"
	"github.com/irsalhamdi/studynotion-api/random"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
)

// Mailer sends the buyer-facing notifications of the purchase flow.
type Mailer interface {
	SendCourseEnrollment(email string, name string, courseName string) error
	SendPaymentSuccess(email string, name string, amount int, orderID string, paymentID string) error
}

// checkout validates the requested courses for the buyer and returns
// them. Unknown course or existing enrollment aborts the whole batch.
func checkout(ctx context.Context, db *sqlx.DB, userID string, courseIDs []string) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		c, err := course.Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, weberr.NotFound(fmt.Errorf("course[%s] does not exist", id))
			}
			return nil, fmt.Errorf("fetching course[%s]: %w", id, err)
		}

		enrolled, err := course.IsEnrolled(ctx, db, id, userID)
		if err != nil {
			return nil, fmt.Errorf("checking enrollment for course[%s]: %w", id, err)
		}
		if enrolled {
			err := fmt.Errorf("user already enrolled in course %q", c.Name)
			return nil, weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		courses = append(courses, c)
	}

	return courses, nil
}

// prepare persists the pending order bound to the gateway order id.
func prepare(ctx context.Context, db *sqlx.DB, userID string, providerID string, receipt string, amount int, courses []course.Course) error {
	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		now := time.Now().UTC()
		ord := Order{
			ID:         validate.GenerateID(),
			UserID:     userID,
			ProviderID: providerID,
			Status:     Pending,
			Amount:     amount,
			Currency:   Currency,
			Receipt:    receipt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := Create(ctx, tx, ord); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		for _, c := range courses {
			it := Item{
				OrderID:   ord.ID,
				CourseID:  c.ID,
				Price:     c.Price,
				CreatedAt: now,
			}

			if err := CreateItem(ctx, tx, it); err != nil {
				return fmt.Errorf("creating item: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("creating the order bound to payment[%s] for user[%s]: %w", providerID, userID, err)
	}
	return nil
}

// enroll runs the whole enrollment in one transaction: for every course,
// add the buyer to the enrolled-set and create the progress record. Any
// unknown course rolls everything back. The successful order, if one was
// prepared, is marked success and its courses are flushed from the cart.
func enroll(ctx context.Context, db *sqlx.DB, userID string, providerID string, courseIDs []string) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(courseIDs))

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		now := time.Now().UTC()

		for _, id := range courseIDs {
			c, err := course.Fetch(ctx, tx, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("course[%s] not found", id)
				}
				return fmt.Errorf("fetching course[%s]: %w", id, err)
			}

			if err := course.Enroll(ctx, tx, id, userID, now); err != nil {
				return fmt.Errorf("enrolling user[%s] in course[%s]: %w", userID, id, err)
			}

			p := progress.Progress{
				ID:        validate.GenerateID(),
				CourseID:  id,
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := progress.Create(ctx, tx, p); err != nil {
				return fmt.Errorf("creating progress for course[%s]: %w", id, err)
			}

			courses = append(courses, c)
		}

		ord, err := FetchByProviderID(ctx, tx, providerID)
		if err == nil {
			up := StatusUp{
				ID:        ord.ID,
				Status:    Success,
				UpdatedAt: now,
			}
			if err := UpdateStatus(ctx, tx, up); err != nil {
				return fmt.Errorf("updating order status: %w", err)
			}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("fetching the order bound to payment[%s]: %w", providerID, err)
		}

		if err := cart.DeletePurchased(ctx, tx, userID, courseIDs); err != nil {
			return fmt.Errorf("flushing purchased cart items: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return courses, nil
}

// HandleCheckout validates the requested courses, sums their price and
// asks the gateway for an order over the total in paise. The gateway's
// order object is returned to the client untouched.
func HandleCheckout(db *sqlx.DB, gw Gateway) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var cn CheckoutNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding checkout: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, "provide valid course IDs", http.StatusBadRequest)
		}

		courses, err := checkout(ctx, db, clm.UserID, cn.Courses)
		if err != nil {
			return err
		}

		var tot int
		for _, c := range courses {
			tot += c.Price
		}

		// The gateway expects the smallest subunit of the currency.
		amount := tot * 100
		receipt := "rcpt_" + random.String(18)

		gwOrd, err := gw.CreateOrder(ctx, amount, Currency, receipt)
		if err != nil {
			return fmt.Errorf("creating gateway order: %w", err)
		}

		providerID, _ := gwOrd["id"].(string)
		if providerID == "" {
			return fmt.Errorf("gateway order response has no id: %v", gwOrd)
		}

		if err := prepare(ctx, db, clm.UserID, providerID, receipt, amount, courses); err != nil {
			return fmt.Errorf("creating the order on the database: %w", err)
		}

		return web.Respond(ctx, w, gwOrd, http.StatusOK)
	}
}

// HandleVerify recomputes the callback signature and, on a match, runs
// the enrollment transaction and queues one confirmation mail per course.
func HandleVerify(db *sqlx.DB, secret string, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var v Verification
		if err := web.Decode(w, r, &v); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding verification: %w", err))
		}

		if err := validate.Check(v); err != nil {
			return weberr.NewError(err, "payment details are incomplete", http.StatusBadRequest)
		}

		if !VerifySignature(secret, v.OrderID, v.PaymentID, v.Signature) {
			err := errors.New("payment verification failed")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		courses, err := enroll(ctx, db, clm.UserID, v.OrderID, v.Courses)
		if err != nil {
			return weberr.NewError(
				fmt.Errorf("enrolling user[%s]: %w", clm.UserID, err),
				"enrollment failed",
				http.StatusInternalServerError,
			)
		}

		u, err := user.Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		for _, c := range courses {
			c := c
			bg.Add(func() error {
				return mailer.SendCourseEnrollment(u.Email, u.Name, c.Name)
			})
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandlePaymentSuccessEmail mails the payment-received notice. The
// amount arrives in paise and is shown in whole units.
func HandlePaymentSuccessEmail(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var pn PaymentNotice
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding payment notice: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, "provide all required fields", http.StatusBadRequest)
		}

		u, err := user.Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
		}

		bg.Add(func() error {
			return mailer.SendPaymentSuccess(u.Email, u.Name, pn.Amount/100, pn.OrderID, pn.PaymentID)
		})

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
