package checkout

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/enums"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/types"
)

// ItemIssue is one structured reason a branch cannot serve an item.
type ItemIssue struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Reason    string `json:"reason"`
	Remaining *int   `json:"remaining,omitempty"`
}

// Availability is a branch's verdict for the current cart.
type Availability struct {
	BranchID     string             `json:"branch_id"`
	Status       enums.BranchStatus `json:"status"`
	Available    bool               `json:"available"`
	MinRemaining *int               `json:"min_remaining,omitempty"`
	Issues       []ItemIssue        `json:"issues,omitempty"`
	Message      string             `json:"message,omitempty"`
}

// Err converts an unavailable verdict into the typed error placement and
// branch switching surface to callers. Nil when the branch can serve.
func (a *Availability) Err() error {
	if a == nil {
		return pkgerrors.New(pkgerrors.CodeInconsistency, "branch availability unknown")
	}
	if a.Available {
		return nil
	}
	message := a.Message
	if message == "" {
		message = fmt.Sprintf("branch %s cannot serve this order", a.BranchID)
	}
	return pkgerrors.New(pkgerrors.CodeAvailability, message).WithDetails(a)
}

// CheckAvailability verifies that a branch can serve every line of the cart.
// A non-nil error means the check itself failed; an unavailable branch comes
// back as a verdict, not an error.
func (c *Calculator) CheckAvailability(ctx context.Context, branchID string, lines []types.CartLine) (*Availability, error) {
	if branchID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	lines = types.MergeLines(lines)

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id := branchID
	data, err := c.client.CheckBranchAvailability(cctx, bakery.AvailabilityRequest{
		BranchID: &id,
		Items:    availabilityItems(lines),
	})
	if err != nil {
		return nil, err
	}

	verdict := verdictFor(branchID, data)
	if !verdict.Available {
		c.metrics.IncAvailabilityBlock()
		c.log.Warn(c.log.WithBranchID(ctx, branchID), availabilitySummary(verdict).Error())
	}
	return verdict, nil
}

// CheckBranches fans one availability request across candidate branches,
// used by the branch picker to grey out branches that cannot serve the cart.
func (c *Calculator) CheckBranches(ctx context.Context, branchIDs []string, lines []types.CartLine) ([]*Availability, error) {
	if len(branchIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one branch id is required")
	}
	lines = types.MergeLines(lines)

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.client.CheckBranchAvailability(cctx, bakery.AvailabilityRequest{
		BranchIDs: branchIDs,
		Items:     availabilityItems(lines),
	})
	if err != nil {
		return nil, err
	}

	verdicts := make([]*Availability, 0, len(branchIDs))
	for _, branchID := range branchIDs {
		verdicts = append(verdicts, verdictFor(branchID, data))
	}
	return verdicts, nil
}

// verdictFor extracts one branch's verdict from the upstream payload. A
// branch missing from the response is treated as unavailable rather than
// guessed at.
func verdictFor(branchID string, data *bakery.AvailabilityData) *Availability {
	if data != nil {
		for _, branch := range data.Branches {
			if branch.BranchID != branchID {
				continue
			}
			verdict := &Availability{
				BranchID:     branch.BranchID,
				Status:       branch.Status,
				Available:    branch.Status == enums.BranchStatusAvailable,
				MinRemaining: branch.MinRemaining,
				Message:      branch.Message,
			}
			for _, issue := range branch.Issues {
				converted := ItemIssue{
					ProductID: issue.ProductID,
					Reason:    issue.Reason,
					Remaining: issue.Remaining,
				}
				if issue.VariantID != nil {
					converted.VariantID = *issue.VariantID
				}
				verdict.Issues = append(verdict.Issues, converted)
			}
			return verdict
		}
	}
	return &Availability{
		BranchID:  branchID,
		Status:    enums.BranchStatusUnavailable,
		Available: false,
		Message:   "branch not present in availability response",
	}
}

// availabilitySummary aggregates every issue into one loggable error.
func availabilitySummary(verdict *Availability) error {
	err := fmt.Errorf("branch %s unavailable (%s)", verdict.BranchID, verdict.Status)
	for _, issue := range verdict.Issues {
		reason := issue.Reason
		if reason == "" {
			reason = "unavailable"
		}
		err = multierr.Append(err, fmt.Errorf("product %s: %s", issue.ProductID, reason))
	}
	return err
}

func availabilityItems(lines []types.CartLine) []bakery.AvailabilityItem {
	items := make([]bakery.AvailabilityItem, 0, len(lines))
	for _, line := range lines {
		ids := line.VariantIDs()
		if len(ids) == 0 {
			items = append(items, bakery.AvailabilityItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
			continue
		}
		for _, variantID := range ids {
			id := variantID
			items = append(items, bakery.AvailabilityItem{
				ProductID: line.ProductID,
				VariantID: &id,
				Quantity:  line.Quantity,
			})
		}
	}
	return items
}
