package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountConfig is the immutable rate table the calculator is constructed
// with. Rates are fractions of the subtotal; PointsPerUnit is how many loyalty
// points convert to one currency unit.
type DiscountConfig struct {
	TierRates     map[core.MemberTier]float64
	PointsPerUnit int
}

// DefaultDiscountConfig returns the standard shop rate table.
func DefaultDiscountConfig() DiscountConfig {
	return DiscountConfig{
		TierRates: map[core.MemberTier]float64{
			core.TierNone:     0,
			core.TierBronze:   0,
			core.TierSilver:   0.05,
			core.TierGold:     0.08,
			core.TierPlatinum: 0.10,
		},
		PointsPerUnit: 100,
	}
}

// PricingService computes order totals, discounts and loyalty points. All
// methods are pure: identical inputs always produce identical outputs.
type PricingService struct {
	cfg DiscountConfig
}

// NewPricingService creates a pricing service with the given rate table
func NewPricingService(cfg DiscountConfig) *PricingService {
	if cfg.PointsPerUnit <= 0 {
		cfg.PointsPerUnit = 100
	}
	return &PricingService{cfg: cfg}
}

// Subtotal sums unitPrice * quantity over all line items, rounded to 2 dp.
func (s *PricingService) Subtotal(items []core.OrderItem) float64 {
	return s.subtotal(items).InexactFloat64()
}

func (s *PricingService) subtotal(items []core.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}

// MemberDiscount returns the tier discount amount on the given subtotal.
func (s *PricingService) MemberDiscount(subtotal float64, tier core.MemberTier) float64 {
	return s.memberDiscount(decimal.NewFromFloat(subtotal), tier).InexactFloat64()
}

func (s *PricingService) memberDiscount(subtotal decimal.Decimal, tier core.MemberTier) decimal.Decimal {
	rate, ok := s.cfg.TierRates[tier]
	if !ok {
		rate = 0
	}
	return subtotal.Mul(decimal.NewFromFloat(rate)).Round(2)
}

// Calculate computes the full financial breakdown for an order. The points
// discount is applied after the member discount and can never push the final
// amount below zero. Points are earned on the pre-discount subtotal.
func (s *PricingService) Calculate(items []core.OrderItem, member *core.MemberInfo) (*core.CalculationResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items to price", core.ErrInvalidOrder)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", core.ErrInvalidOrder, item.ProductID)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: negative unit price for product %s", core.ErrInvalidOrder, item.ProductID)
		}
	}

	subtotal := s.subtotal(items)

	tier := core.TierNone
	availablePoints := 0
	if member != nil {
		tier = member.Tier
		availablePoints = member.AvailablePoints
	}

	memberDiscount := s.memberDiscount(subtotal, tier)
	remaining := subtotal.Sub(memberDiscount)

	// Points redeemable is bounded by what remains after the member discount.
	perUnit := decimal.NewFromInt(int64(s.cfg.PointsPerUnit))
	maxRedeemable := remaining.Mul(perUnit).IntPart()
	pointsUsed := int64(availablePoints)
	if pointsUsed > maxRedeemable {
		pointsUsed = maxRedeemable
	}
	if pointsUsed < 0 {
		pointsUsed = 0
	}
	pointsDiscount := decimal.NewFromInt(pointsUsed).Div(perUnit).Round(2)

	finalAmount := subtotal.Sub(memberDiscount).Sub(pointsDiscount).Round(2)
	if finalAmount.IsNegative() {
		finalAmount = decimal.Zero
	}

	discountAmount := memberDiscount.Add(pointsDiscount)

	return &core.CalculationResult{
		Subtotal:       subtotal.InexactFloat64(),
		TotalAmount:    subtotal.InexactFloat64(),
		MemberDiscount: memberDiscount.InexactFloat64(),
		PointsDiscount: pointsDiscount.InexactFloat64(),
		DiscountAmount: discountAmount.InexactFloat64(),
		FinalAmount:    finalAmount.InexactFloat64(),
		PointsEarned:   int(subtotal.IntPart()),
		PointsUsed:     int(pointsUsed),
	}, nil
}

// OrderNumber generates a human-displayable order number: timestamp plus a
// random suffix. Uniqueness is best-effort, not cryptographically guaranteed.
func (s *PricingService) OrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PST-%s-%s", time.Now().Format("20060102-150405"), suffix)
}
