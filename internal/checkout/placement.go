package checkout

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// PlaceOrderInput is one logical order submission.
type PlaceOrderInput struct {
	Lines         []types.CartLine
	OrderType     enums.OrderType
	BranchID      string
	AddressID     string
	GuestAddress  *types.GuestAddress
	Customer      bakery.CustomerInfo
	PaymentMethod string
	IsGuest       bool

	// SkipAvailabilityCheck bypasses the pre-submission availability gate.
	// The backend still enforces stock on its side.
	SkipAvailabilityCheck bool
}

func (in PlaceOrderInput) validate() error {
	switch {
	case len(in.Lines) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	case !in.OrderType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "order type must be delivery or pickup")
	case in.BranchID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	case in.Customer.Name == "" || in.Customer.Phone == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone are required")
	case in.PaymentMethod == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if in.OrderType == enums.OrderTypeDelivery && in.AddressID == "" && in.GuestAddress == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery orders require an address")
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "every item needs a product id and a positive quantity")
		}
	}
	return nil
}

// PlaceOrder submits the order. The committed calculation is sent along as
// expected totals so the backend can reject drift. Transient upstream
// failures are retried with exponential backoff under a single idempotency
// key; when the final attempt times out the outcome is reported as ambiguous
// rather than failed, because the order may have been accepted.
func (c *Calculator) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*bakery.CreatedOrder, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	lines := types.MergeLines(input.Lines)

	if !input.SkipAvailabilityCheck {
		verdict, err := c.CheckAvailability(ctx, input.BranchID, lines)
		if err != nil {
			return nil, err
		}
		if err := verdict.Err(); err != nil {
			c.metrics.IncPlacement("blocked")
			return nil, err
		}
	}

	c.mu.Lock()
	committed := c.current
	promoCode := ""
	if c.promo.active != nil {
		promoCode = c.promo.active.Code
	}
	c.mu.Unlock()

	if committed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInconsistency, "no committed calculation to place an order from")
	}
	if !committed.ConsistentTotal() {
		return nil, pkgerrors.New(pkgerrors.CodeInconsistency, "committed calculation total does not match its components")
	}

	req := bakery.CreateOrderRequest{
		Items:         createOrderItems(lines, committed),
		Customer:      input.Customer,
		BranchID:      input.BranchID,
		OrderType:     input.OrderType,
		PaymentMethod: input.PaymentMethod,
		IsGuest:       input.IsGuest,
		ExpectedTotals: bakery.ExpectedTotals{
			Subtotal:       committed.Subtotal,
			DeliveryFee:    committed.DeliveryFee,
			TaxAmount:      committed.TaxAmount,
			DiscountAmount: committed.DiscountAmount,
			TotalAmount:    committed.TotalAmount,
		},
	}
	if input.AddressID != "" {
		id := input.AddressID
		req.DeliveryAddressID = &id
	}
	if input.GuestAddress != nil {
		req.GuestDeliveryAddress = input.GuestAddress
	}
	if promoCode != "" {
		req.PromoCode = &promoCode
	}

	// One key for the whole logical submission so retries cannot create
	// duplicate orders.
	idempotencyKey := uuid.NewString()

	backoff := retry.WithMaxRetries(uint64(c.placementAttempts-1), retry.NewExponential(c.placementBackoff))

	var order *bakery.CreatedOrder
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		created, err := c.client.CreateOrder(cctx, req, idempotencyKey)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeDependency) || isTimeout(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		if isTimeout(err) {
			c.metrics.IncPlacement("ambiguous")
			return nil, pkgerrors.Wrap(pkgerrors.CodeAmbiguous, err, "order submission timed out; it may still have been accepted").
				WithDetails(map[string]string{"idempotency_key": idempotencyKey})
		}
		c.metrics.IncPlacement("failed")
		return nil, err
	}

	c.metrics.IncPlacement("accepted")
	return order, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// createOrderItems resolves unit prices from the committed calculation so
// the submission reflects exactly what the customer saw.
func createOrderItems(lines []types.CartLine, committed *types.OrderCalculation) []bakery.CreateOrderItem {
	priced := make(map[string]types.CalculatedItem, len(committed.Items))
	for _, item := range committed.Items {
		priced[skuKey(item.ProductID, item.VariantIDs)] = item
	}

	items := make([]bakery.CreateOrderItem, 0, len(lines))
	for _, line := range lines {
		item := bakery.CreateOrderItem{
			ProductID:           line.ProductID,
			VariantIDs:          line.VariantIDs(),
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			SpecialInstructions: line.SpecialInstructions,
		}
		if match, ok := priced[skuKey(line.ProductID, line.VariantIDs())]; ok && match.UnitPrice.IsPositive() {
			item.UnitPrice = match.UnitPrice
		}
		items = append(items, item)
	}
	return items
}

func skuKey(productID string, variantIDs []string) string {
	line := types.CartLine{ProductID: productID}
	for _, id := range variantIDs {
		line.Variants = append(line.Variants, types.Variant{ID: id})
	}
	return line.SKUKey()
}
