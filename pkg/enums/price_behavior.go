package enums

// PriceBehavior controls how a variant's price composes with the product's
// base price. An empty value is treated as "add".
type PriceBehavior string

const (
	// PriceBehaviorOverride replaces the base unit price outright.
	PriceBehaviorOverride PriceBehavior = "override"
	// PriceBehaviorAdd sums the variant's modifier onto the running price.
	PriceBehaviorAdd PriceBehavior = "add"
)

// String implements fmt.Stringer.
func (p PriceBehavior) String() string {
	return string(p)
}

// IsOverride reports whether the variant replaces the base price. Anything
// other than an explicit override marker composes additively.
func (p PriceBehavior) IsOverride() bool {
	return p == PriceBehaviorOverride
}
