package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

func availableBranch(branchID string) func(context.Context, bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
	return func(context.Context, bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
		return &bakery.AvailabilityData{
			Branches: []bakery.BranchAvailability{
				{BranchID: branchID, Status: enums.BranchStatusAvailable},
			},
		}, nil
	}
}

func placementInput() PlaceOrderInput {
	return PlaceOrderInput{
		Lines:         []types.CartLine{croissantLine(2)},
		OrderType:     enums.OrderTypePickup,
		BranchID:      "branch-1",
		Customer:      bakery.CustomerInfo{Name: "Maya", Phone: "+15550100"},
		PaymentMethod: "card",
	}
}

func newPlacementCalculator(t *testing.T, client Client) *Calculator {
	t.Helper()
	calc, err := NewCalculator(Options{
		Client:               client,
		PlacementMaxAttempts: 3,
		PlacementBaseBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return calc
}

// commitCalculation seeds the committed state a placement cross-checks.
func commitCalculation(t *testing.T, calc *Calculator, client *stubClient) {
	t.Helper()
	client.calculate = func(context.Context, bakery.CalculateRequest) (*bakery.CalculateData, error) {
		return &bakery.CalculateData{Subtotal: decimal.NewFromInt(9)}, nil
	}
	if _, err := calc.Calculate(context.Background(), CalculateInput{
		Lines:     []types.CartLine{croissantLine(2)},
		OrderType: enums.OrderTypePickup,
		Branch:    branch("branch-1"),
	}); err != nil {
		t.Fatalf("seed Calculate: %v", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	t.Parallel()

	calc := newPlacementCalculator(t, &stubClient{})

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{"empty cart", func(in *PlaceOrderInput) { in.Lines = nil }},
		{"missing branch", func(in *PlaceOrderInput) { in.BranchID = "" }},
		{"missing customer phone", func(in *PlaceOrderInput) { in.Customer.Phone = "" }},
		{"missing payment method", func(in *PlaceOrderInput) { in.PaymentMethod = "" }},
		{"delivery without address", func(in *PlaceOrderInput) {
			in.OrderType = enums.OrderTypeDelivery
			in.AddressID = ""
			in.GuestAddress = nil
		}},
		{"zero quantity line", func(in *PlaceOrderInput) {
			in.Lines = []types.CartLine{{ProductID: "prod-croissant", Quantity: 0}}
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := placementInput()
			tc.mutate(&input)
			_, err := calc.PlaceOrder(context.Background(), input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPlaceOrderBlockedByAvailability(t *testing.T) {
	t.Parallel()

	client := &stubClient{
		availability: func(context.Context, bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			return &bakery.AvailabilityData{
				Branches: []bakery.BranchAvailability{
					{BranchID: "branch-1", Status: enums.BranchStatusUnavailable},
				},
			}, nil
		},
	}
	calc := newPlacementCalculator(t, client)
	commitCalculation(t, calc, client)

	_, err := calc.PlaceOrder(context.Background(), placementInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeAvailability) {
		t.Fatalf("expected availability error, got %v", err)
	}
}

func TestPlaceOrderRequiresCommittedCalculation(t *testing.T) {
	t.Parallel()

	client := &stubClient{availability: availableBranch("branch-1")}
	calc := newPlacementCalculator(t, client)

	_, err := calc.PlaceOrder(context.Background(), placementInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeInconsistency) {
		t.Fatalf("expected inconsistency error without a committed calculation, got %v", err)
	}
}

func TestPlaceOrderRetriesTransientFailuresUnderOneKey(t *testing.T) {
	t.Parallel()

	var keys []string
	client := &stubClient{availability: availableBranch("branch-1")}
	client.createOrder = func(_ context.Context, req bakery.CreateOrderRequest, key string) (*bakery.CreatedOrder, error) {
		keys = append(keys, key)
		if len(keys) < 3 {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway flapping")
		}
		if !req.ExpectedTotals.Subtotal.Equal(decimal.NewFromInt(9)) {
			t.Errorf("expected totals not forwarded: %+v", req.ExpectedTotals)
		}
		return &bakery.CreatedOrder{ID: "order-1", OrderNumber: "A-1001"}, nil
	}
	calc := newPlacementCalculator(t, client)
	commitCalculation(t, calc, client)

	order, err := calc.PlaceOrder(context.Background(), placementInput())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.OrderNumber != "A-1001" {
		t.Fatalf("order = %+v", order)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(keys))
	}
	if keys[0] != keys[1] || keys[1] != keys[2] {
		t.Fatalf("idempotency key must be stable across retries: %v", keys)
	}
}

func TestPlaceOrderGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	attempts := 0
	client := &stubClient{availability: availableBranch("branch-1")}
	client.createOrder = func(context.Context, bakery.CreateOrderRequest, string) (*bakery.CreatedOrder, error) {
		attempts++
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "still down")
	}
	calc := newPlacementCalculator(t, client)
	commitCalculation(t, calc, client)

	_, err := calc.PlaceOrder(context.Background(), placementInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestPlaceOrderTimeoutIsAmbiguous(t *testing.T) {
	t.Parallel()

	client := &stubClient{availability: availableBranch("branch-1")}
	client.createOrder = func(context.Context, bakery.CreateOrderRequest, string) (*bakery.CreatedOrder, error) {
		return nil, context.DeadlineExceeded
	}
	calc := newPlacementCalculator(t, client)
	commitCalculation(t, calc, client)

	_, err := calc.PlaceOrder(context.Background(), placementInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeAmbiguous) {
		t.Fatalf("expected ambiguous outcome on timeout, got %v", err)
	}
	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]string)
	if !ok || details["idempotency_key"] == "" {
		t.Fatalf("ambiguous error must expose the idempotency key, got %v", typed.Details())
	}
}

func TestPlaceOrderRejectsNonRetryableFailureImmediately(t *testing.T) {
	t.Parallel()

	attempts := 0
	client := &stubClient{availability: availableBranch("branch-1")}
	client.createOrder = func(context.Context, bakery.CreateOrderRequest, string) (*bakery.CreatedOrder, error) {
		attempts++
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "expected totals drifted")
	}
	calc := newPlacementCalculator(t, client)
	commitCalculation(t, calc, client)

	_, err := calc.PlaceOrder(context.Background(), placementInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict passthrough, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("non-retryable failures must not retry, attempts = %d", attempts)
	}
}
