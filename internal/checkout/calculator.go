package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/internal/delivery"
	"github.com/ovenlight/crumb-checkout/internal/pricing"
	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/logger"
	"github.com/ovenlight/crumb-checkout/pkg/metrics"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

const defaultCalculateTimeout = 10 * time.Second

// Sentinel outcomes of Calculate. Both leave the previously committed
// calculation untouched.
var (
	// ErrStale marks a calculation response superseded by a newer request.
	ErrStale = pkgerrors.New(pkgerrors.CodeStale, "calculation superseded by a newer request")

	// ErrAwaitingBranch defers calculation for delivery orders until the
	// serving branch has been resolved.
	ErrAwaitingBranch = pkgerrors.New(pkgerrors.CodeValidation, "delivery branch not resolved yet")
)

// Client is the upstream surface the calculator depends on.
type Client interface {
	Calculate(ctx context.Context, req bakery.CalculateRequest) (*bakery.CalculateData, error)
	ValidatePromo(ctx context.Context, req bakery.PromoValidationRequest) (*types.PromoCode, error)
	CheckBranchAvailability(ctx context.Context, req bakery.AvailabilityRequest) (*bakery.AvailabilityData, error)
	CreateOrder(ctx context.Context, req bakery.CreateOrderRequest, idempotencyKey string) (*bakery.CreatedOrder, error)
}

// Options configures a Calculator.
type Options struct {
	Client  Client
	Logger  *logger.Logger
	Metrics *metrics.CheckoutMetrics

	// Timeout bounds each upstream calculation round-trip.
	Timeout time.Duration

	// FreeShippingSubtotal overrides the default order-value free-shipping
	// threshold when positive.
	FreeShippingSubtotal decimal.Decimal

	// PlacementMaxAttempts and PlacementBaseBackoff bound order-submission
	// retries.
	PlacementMaxAttempts int
	PlacementBaseBackoff time.Duration
}

// Calculator owns one checkout session: its promo slot, its committed
// calculation, and the monotonic sequence that orders concurrent
// recalculations.
type Calculator struct {
	client  Client
	log     *logger.Logger
	metrics *metrics.CheckoutMetrics

	timeout              time.Duration
	freeShippingSubtotal decimal.Decimal
	placementAttempts    int
	placementBackoff     time.Duration

	mu      sync.Mutex
	seq     uint64
	promo   promoSlot
	current *types.OrderCalculation
}

// NewCalculator builds a session calculator.
func NewCalculator(opts Options) (*Calculator, error) {
	if opts.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream client is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.New(logger.Options{ServiceName: "crumb-checkout"})
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCalculateTimeout
	}
	if opts.PlacementMaxAttempts < 1 {
		opts.PlacementMaxAttempts = 3
	}
	if opts.PlacementBaseBackoff <= 0 {
		opts.PlacementBaseBackoff = 500 * time.Millisecond
	}
	return &Calculator{
		client:               opts.Client,
		log:                  opts.Logger,
		metrics:              opts.Metrics,
		timeout:              opts.Timeout,
		freeShippingSubtotal: opts.FreeShippingSubtotal,
		placementAttempts:    opts.PlacementMaxAttempts,
		placementBackoff:     opts.PlacementBaseBackoff,
	}, nil
}

// CalculateInput describes one recalculation request.
type CalculateInput struct {
	Lines        []types.CartLine
	OrderType    enums.OrderType
	Address      *types.Address
	Branch       *types.Branch
	IsGuest      bool
	GuestAddress *types.GuestAddress

	// CheckAvailability runs the branch availability gate before
	// calculating, so an un-serveable branch fails fast instead of pricing
	// an order that cannot be placed.
	CheckAvailability bool
}

// Current returns the committed calculation, or nil before the first commit.
func (c *Calculator) Current() *types.OrderCalculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// PromoState reports the promo slot lifecycle state.
func (c *Calculator) PromoState() enums.PromoState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promo.State()
}

// ActivePromo returns the currently applied promo, if any.
func (c *Calculator) ActivePromo() *types.PromoCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promo.active
}

// Calculate recomputes the order. Each call supersedes every in-flight
// predecessor: a response that arrives after a newer request was issued is
// discarded and reported as ErrStale alongside the currently committed
// calculation. Upstream failure commits a locally estimated calculation
// instead of leaving the session blank.
func (c *Calculator) Calculate(ctx context.Context, input CalculateInput) (*types.OrderCalculation, error) {
	start := time.Now()
	lines := types.MergeLines(input.Lines)

	c.mu.Lock()
	c.seq++
	token := c.seq
	c.mu.Unlock()

	ctx = c.log.WithCalculationSeq(ctx, token)

	if len(lines) == 0 {
		calc := types.ZeroCalculation()
		c.mu.Lock()
		if token == c.seq {
			c.current = calc
		}
		current := c.current
		c.mu.Unlock()
		c.metrics.ObserveCalculation(metrics.ResultEmpty, time.Since(start))
		return current, nil
	}

	if input.OrderType == enums.OrderTypeDelivery && (input.Branch == nil || input.Branch.ID == "") {
		c.metrics.ObserveCalculation(metrics.ResultDeferred, time.Since(start))
		c.log.Debug(ctx, "calculation deferred until branch resolution")
		return c.Current(), ErrAwaitingBranch
	}

	if input.CheckAvailability && input.Branch != nil && input.Branch.ID != "" {
		verdict, err := c.CheckAvailability(ctx, input.Branch.ID, lines)
		if err != nil {
			return c.Current(), err
		}
		if err := verdict.Err(); err != nil {
			return c.Current(), err
		}
	}

	req := c.buildRequest(lines, input)

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	data, err := c.client.Calculate(cctx, req)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		c.metrics.ObserveCalculation(metrics.ResultStale, time.Since(start))
		c.log.Debug(ctx, "discarding stale calculation response")
		return c.current, ErrStale
	}

	if err != nil {
		calc := c.localEstimate(lines, input)
		c.current = calc
		c.metrics.ObserveCalculation(metrics.ResultFallback, time.Since(start))
		c.log.Warn(ctx, "order calculation failed upstream; committed local estimate")
		return calc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order calculation failed; showing local estimate")
	}

	calc := c.reconcile(data, lines, input)
	c.current = calc
	c.metrics.ObserveCalculation(metrics.ResultFresh, time.Since(start))
	return calc, nil
}

func (c *Calculator) buildRequest(lines []types.CartLine, input CalculateInput) bakery.CalculateRequest {
	req := bakery.CalculateRequest{
		Items:     calculateItems(lines),
		OrderType: input.OrderType,
		IsGuest:   input.IsGuest,
	}
	if input.Branch != nil && input.Branch.ID != "" {
		id := input.Branch.ID
		req.BranchID = &id
	}
	if input.Address != nil && input.Address.ID != "" {
		id := input.Address.ID
		req.DeliveryAddressID = &id
		req.DeliveryCoordinates = input.Address.Coordinates
	}
	if input.GuestAddress != nil {
		req.GuestDeliveryAddress = input.GuestAddress
		if req.DeliveryCoordinates == nil {
			req.DeliveryCoordinates = input.GuestAddress.Coordinates
		}
	}
	if code := c.promoCode(); code != "" {
		req.PromoCode = &code
	}
	return req
}

func (c *Calculator) promoCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promo.code()
}

// reconcile turns the upstream payload into the committed calculation,
// patching fields the backend omitted or zeroed and rederiving the total.
// Caller holds c.mu.
func (c *Calculator) reconcile(data *bakery.CalculateData, lines []types.CartLine, input CalculateInput) *types.OrderCalculation {
	calc := &types.OrderCalculation{
		Items:          calculatedItems(data.Items, lines),
		Subtotal:       data.Subtotal,
		DeliveryFee:    data.DeliveryFee,
		TaxAmount:      data.TaxAmount,
		DiscountAmount: data.DiscountAmount,
		TotalAmount:    data.TotalAmount,
		PointsEarned:   data.PointsEarned,
		PromoDetails:   data.PromoDetails,
	}
	if calc.Subtotal.IsZero() {
		calc.Subtotal = types.Subtotal(lines)
	}

	if promo := c.promo.active; promo != nil && !promo.IsFreeShipping() && calc.DiscountAmount.IsZero() {
		calc.DiscountAmount = pricing.PromoDiscount(promo, calc.Subtotal)
	}

	if input.OrderType != enums.OrderTypeDelivery {
		calc.DeliveryFee = decimal.Zero
		calc.WaivedDeliveryFee = decimal.Zero
	} else {
		quote := delivery.Resolve(delivery.Context{
			OrderType:            input.OrderType,
			ServerFee:            data.DeliveryFee,
			Address:              input.Address,
			Branch:               input.Branch,
			Subtotal:             calc.Subtotal,
			ActivePromo:          c.promo.active,
			LastValidatedPromo:   c.promo.lastValidated,
			BackendPromo:         data.PromoDetails,
			FreeShippingSubtotal: c.freeShippingSubtotal,
		})
		calc.DeliveryFee = quote.Fee
		calc.WaivedDeliveryFee = quote.Waived
	}

	calc.RederiveTotal()
	return calc
}

// localEstimate synthesizes a calculation from cart data alone, for when the
// backend is unreachable. Caller holds c.mu.
func (c *Calculator) localEstimate(lines []types.CartLine, input CalculateInput) *types.OrderCalculation {
	subtotal := types.Subtotal(lines)

	calc := &types.OrderCalculation{
		Items:        calculatedItems(nil, lines),
		Subtotal:     subtotal,
		TaxAmount:    decimal.Zero,
		PromoDetails: c.promo.active,
		Estimated:    true,
	}
	calc.DiscountAmount = pricing.PromoDiscount(c.promo.active, subtotal)

	address := input.Address
	if address == nil && input.GuestAddress != nil && input.GuestAddress.Coordinates != nil {
		address = &types.Address{Coordinates: input.GuestAddress.Coordinates}
	}

	quote := delivery.Resolve(delivery.Context{
		OrderType:            input.OrderType,
		Address:              address,
		Branch:               input.Branch,
		Subtotal:             subtotal,
		ActivePromo:          c.promo.active,
		LastValidatedPromo:   c.promo.lastValidated,
		FreeShippingSubtotal: c.freeShippingSubtotal,
	})
	calc.DeliveryFee = quote.Fee
	calc.WaivedDeliveryFee = quote.Waived

	calc.RederiveTotal()
	return calc
}

// ApplyPromo validates a promo code upstream and, on success, installs it in
// the slot. A failed validation leaves any previously applied promo in place.
func (c *Calculator) ApplyPromo(ctx context.Context, code string, isGuest bool) (*types.PromoCode, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	c.mu.Lock()
	c.promo.markPending(code)
	orderTotal := decimal.Zero
	if c.current != nil {
		orderTotal = c.current.Subtotal
	}
	c.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	promo, err := c.client.ValidatePromo(cctx, bakery.PromoValidationRequest{
		Code:       code,
		OrderTotal: orderTotal,
		IsGuest:    isGuest,
	})
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.promo.revert()
		c.log.Warn(ctx, "promo validation failed")
		return nil, err
	}
	if promo == nil {
		c.promo.revert()
		return nil, pkgerrors.New(pkgerrors.CodeInconsistency, "promo validation returned no promo")
	}

	c.promo.setValidated(promo)
	return promo, nil
}

// RemovePromo clears the promo slot entirely, including the retained
// free-shipping stickiness.
func (c *Calculator) RemovePromo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promo.clear()
}

func calculateItems(lines []types.CartLine) []bakery.CalculateItem {
	items := make([]bakery.CalculateItem, 0, len(lines))
	for _, line := range lines {
		item := bakery.CalculateItem{
			ProductID:           line.ProductID,
			Quantity:            line.Quantity,
			SpecialInstructions: line.SpecialInstructions,
		}
		if ids := line.VariantIDs(); len(ids) > 0 {
			first := ids[0]
			item.VariantID = &first
			item.VariantIDs = ids
		}
		items = append(items, item)
	}
	return items
}

// calculatedItems prefers the backend's priced lines and falls back to the
// locally priced cart when the payload carried none.
func calculatedItems(priced []bakery.CalculatedLine, lines []types.CartLine) []types.CalculatedItem {
	if len(priced) > 0 {
		items := make([]types.CalculatedItem, 0, len(priced))
		for _, line := range priced {
			items = append(items, types.CalculatedItem{
				ProductID:  line.ProductID,
				VariantIDs: line.VariantIDs,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				LineTotal:  line.LineTotal,
			})
		}
		return items
	}

	items := make([]types.CalculatedItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, types.CalculatedItem{
			ProductID:  line.ProductID,
			VariantIDs: line.VariantIDs(),
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal(),
		})
	}
	return items
}
