package paymaster

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	"github.com/google/uuid"
)

// StripeFundingGateway backs the §4.6 fund() "card"/"bank" path: it opens a
// Stripe Checkout session for topping up a project's paymaster. Its
// constructor sets the package-global stripe.Key that stripe-go's session
// client reads.
type StripeFundingGateway struct {
	successURL string
	cancelURL  string
}

func NewStripeFundingGateway(apiKey, successURL, cancelURL string) paymaster_out.FundingGateway {
	stripe.Key = apiKey
	return &StripeFundingGateway{successURL: successURL, cancelURL: cancelURL}
}

func (g *StripeFundingGateway) CreateFundingIntent(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, amountUsd float64) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(int64(amountUsd * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Paymaster top-up (%s)", chain)),
					},
				},
			},
		},
		Metadata: map[string]string{
			"project_id": projectID.String(),
			"chain":      string(chain),
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create Stripe checkout session: %w", err)
	}

	return sess.ID, sess.URL, nil
}

var _ paymaster_out.FundingGateway = (*StripeFundingGateway)(nil)
