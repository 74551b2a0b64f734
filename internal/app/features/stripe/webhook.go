package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	transactionstore "github.com/courseloft/courseloft/internal/app/store/transactions"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 16

// ServeWebhook handles POST /api/stripe/tenant-webhooks.
//
// The signature is verified against the webhook secret of the tenant the
// event arrived at, so a valid signature from one tenant's Stripe account
// never authenticates an event on another tenant's endpoint. Unhandled event
// types are acknowledged with 200 so Stripe stops retrying them.
func (h *Handler) ServeWebhook(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	}

	cfg := h.Billing.Resolve(t.Stripe)
	if cfg.WebhookSecret == "" {
		http.Error(w, "webhooks are not configured for this site", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), cfg.WebhookSecret)
	if err != nil {
		h.Log.Warn("webhook signature verification failed",
			zap.String("tenant", t.Slug), zap.Error(err))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch event.Type {
	case "payment_intent.succeeded":
		err = h.handlePaymentSucceeded(ctx, t, event)
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(ctx, t, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = h.handleSubscriptionChanged(ctx, t, event)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionDeleted(ctx, event)
	default:
		h.Log.Debug("ignoring webhook event",
			zap.String("tenant", t.Slug), zap.String("type", string(event.Type)))
	}

	if err != nil {
		h.Log.Error("webhook processing failed",
			zap.String("tenant", t.Slug),
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
		// 500 makes Stripe retry; the unique event index keeps retries idempotent.
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handlePaymentSucceeded(ctx context.Context, t *tenancy.Info, event stripeapi.Event) error {
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return err
	}

	txn := models.Transaction{
		TenantID:              t.ID,
		StripePaymentIntentID: intent.ID,
		StripeEventID:         event.ID,
		Amount:                intent.Amount,
		Currency:              string(intent.Currency),
		Status:                "succeeded",
	}
	if intent.Customer != nil {
		txn.StripeCustomerID = intent.Customer.ID
		if c, err := h.Customers.GetByStripeID(ctx, intent.Customer.ID); err == nil {
			txn.UserID = c.UserID
		}
	}

	_, err := h.Transactions.Create(ctx, txn)
	if err == transactionstore.ErrDuplicateEvent {
		return nil // retry of an event we already recorded
	}
	return err
}

func (h *Handler) handleCheckoutCompleted(ctx context.Context, t *tenancy.Info, event stripeapi.Event) error {
	var sess stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}
	if sess.Customer == nil {
		return nil
	}

	customer := models.Customer{
		TenantID:         t.ID,
		StripeCustomerID: sess.Customer.ID,
	}
	if sess.CustomerDetails != nil {
		customer.Email = sess.CustomerDetails.Email
	}
	if userHex, ok := sess.Metadata["user_id"]; ok {
		if id, err := primitive.ObjectIDFromHex(userHex); err == nil {
			customer.UserID = &id
		}
	}

	_, err := h.Customers.Upsert(ctx, customer)
	return err
}

func (h *Handler) handleSubscriptionChanged(ctx context.Context, t *tenancy.Info, event stripeapi.Event) error {
	var sub stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	var productID string
	var periodEnd time.Time
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil && item.Price.Product != nil {
			productID = item.Price.Product.ID
		}
		if item.CurrentPeriodEnd > 0 {
			periodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}

	// Update events can change more than the status: the product drives the
	// subscriber's access tier, so it has to follow plan changes.
	err := h.Subscriptions.UpdateDetails(ctx, sub.ID, string(sub.Status), productID, periodEnd)
	if err == nil {
		return nil
	}
	if err != subscriptionstore.ErrNotFound {
		return err
	}

	rec := models.Subscription{
		TenantID:             t.ID,
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		StripeProductID:      productID,
		CurrentPeriodEnd:     periodEnd,
	}
	if sub.Customer != nil {
		rec.StripeCustomerID = sub.Customer.ID
		if c, err := h.Customers.GetByStripeID(ctx, sub.Customer.ID); err == nil {
			rec.UserID = c.UserID
		}
	}

	_, err = h.Subscriptions.Create(ctx, rec)
	return err
}

func (h *Handler) handleSubscriptionDeleted(ctx context.Context, event stripeapi.Event) error {
	var sub stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}
	err := h.Subscriptions.UpdateStatus(ctx, sub.ID, "canceled")
	if err == subscriptionstore.ErrNotFound {
		return nil // never saw it; nothing to cancel
	}
	return err
}
