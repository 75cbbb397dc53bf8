package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

func TestCheckAvailabilityAvailableBranch(t *testing.T) {
	t.Parallel()

	client := &stubClient{
		availability: func(_ context.Context, req bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			if req.BranchID == nil || *req.BranchID != "branch-1" {
				t.Errorf("branch id not forwarded: %+v", req)
			}
			return &bakery.AvailabilityData{
				Branches: []bakery.BranchAvailability{
					{BranchID: "branch-1", Status: enums.BranchStatusAvailable},
				},
			}, nil
		},
	}
	calc := newTestCalculator(t, client)

	verdict, err := calc.CheckAvailability(context.Background(), "branch-1", []types.CartLine{croissantLine(2)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !verdict.Available {
		t.Fatalf("expected available verdict, got %+v", verdict)
	}
	if err := verdict.Err(); err != nil {
		t.Fatalf("available verdict must not carry an error, got %v", err)
	}
}

func TestCheckAvailabilityStructuredIssues(t *testing.T) {
	t.Parallel()

	variantID := "variant-walnut"
	remaining := 1
	client := &stubClient{
		availability: func(context.Context, bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			return &bakery.AvailabilityData{
				Branches: []bakery.BranchAvailability{
					{
						BranchID: "branch-1",
						Status:   enums.BranchStatusUnavailable,
						Issues: []bakery.BranchIssue{
							{ProductID: "prod-banana-bread", VariantID: &variantID, Reason: "out_of_stock", Remaining: &remaining},
						},
					},
				},
			}, nil
		},
	}
	calc := newTestCalculator(t, client)

	verdict, err := calc.CheckAvailability(context.Background(), "branch-1", []types.CartLine{croissantLine(1)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if verdict.Available {
		t.Fatalf("expected unavailable verdict")
	}
	if len(verdict.Issues) != 1 || verdict.Issues[0].VariantID != "variant-walnut" {
		t.Fatalf("issues not mapped: %+v", verdict.Issues)
	}

	err = verdict.Err()
	if !pkgerrors.IsCode(err, pkgerrors.CodeAvailability) {
		t.Fatalf("verdict error = %v, want availability code", err)
	}
	if typed := pkgerrors.As(err); typed.Details() == nil {
		t.Fatalf("availability error must carry the verdict as details")
	}
}

func TestCheckAvailabilityBranchMissingFromResponse(t *testing.T) {
	t.Parallel()

	client := &stubClient{
		availability: func(context.Context, bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			return &bakery.AvailabilityData{}, nil
		},
	}
	calc := newTestCalculator(t, client)

	verdict, err := calc.CheckAvailability(context.Background(), "branch-ghost", []types.CartLine{croissantLine(1)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if verdict.Available {
		t.Fatalf("a branch absent from the response must be treated as unavailable")
	}
}

func TestCheckAvailabilityExpandsVariantsIntoItems(t *testing.T) {
	t.Parallel()

	var captured []bakery.AvailabilityItem
	client := &stubClient{
		availability: func(_ context.Context, req bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			captured = req.Items
			return &bakery.AvailabilityData{
				Branches: []bakery.BranchAvailability{
					{BranchID: "branch-1", Status: enums.BranchStatusAvailable},
				},
			}, nil
		},
	}
	calc := newTestCalculator(t, client)

	line := types.CartLine{
		ProductID: "prod-cake",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(20),
		Variants: []types.Variant{
			{ID: "variant-large"},
			{ID: "variant-chocolate"},
		},
	}
	if _, err := calc.CheckAvailability(context.Background(), "branch-1", []types.CartLine{line}); err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if len(captured) != 2 {
		t.Fatalf("expected one availability item per variant, got %+v", captured)
	}
	for _, item := range captured {
		if item.VariantID == nil || item.ProductID != "prod-cake" {
			t.Fatalf("variant id missing on expanded item: %+v", item)
		}
	}
}

func TestCheckBranchesReturnsVerdictPerBranch(t *testing.T) {
	t.Parallel()

	client := &stubClient{
		availability: func(_ context.Context, req bakery.AvailabilityRequest) (*bakery.AvailabilityData, error) {
			if len(req.BranchIDs) != 2 {
				t.Errorf("branch ids not forwarded: %+v", req)
			}
			return &bakery.AvailabilityData{
				Branches: []bakery.BranchAvailability{
					{BranchID: "branch-2", Status: enums.BranchStatusInactive},
					{BranchID: "branch-1", Status: enums.BranchStatusAvailable},
				},
			}, nil
		},
	}
	calc := newTestCalculator(t, client)

	verdicts, err := calc.CheckBranches(context.Background(), []string{"branch-1", "branch-2"}, []types.CartLine{croissantLine(1)})
	if err != nil {
		t.Fatalf("CheckBranches: %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("expected two verdicts, got %d", len(verdicts))
	}
	if !verdicts[0].Available || verdicts[0].BranchID != "branch-1" {
		t.Fatalf("verdicts must follow request order: %+v", verdicts[0])
	}
	if verdicts[1].Available {
		t.Fatalf("inactive branch must be unavailable: %+v", verdicts[1])
	}
}
