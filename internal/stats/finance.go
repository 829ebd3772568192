package stats

import (
	"github.com/shopspring/decimal"

	"ecom/internal/core"
)

// MarketingRate is the flat share of gross income booked as marketing cost.
var MarketingRate = decimal.NewFromFloat(0.3)

type RevenueDistribution struct {
	GrossIncome    float64 `json:"grossIncome"`
	NetMargin      float64 `json:"netMargin"`
	Discount       float64 `json:"discount"`
	ProductionCost float64 `json:"productionCost"`
	Burnt          float64 `json:"burnt"`
	MarketingCost  float64 `json:"marketingCost"`
}

// Distribute splits order income into cost buckets: discount, shipping as
// production cost, tax as burnt, and a rounded flat marketing cost. Sums
// are computed in decimal so cent values do not drift.
func Distribute(orders []core.Order) RevenueDistribution {
	var gross, discount, production, burnt decimal.Decimal
	for _, o := range orders {
		gross = gross.Add(decimal.NewFromFloat(o.Total))
		discount = discount.Add(decimal.NewFromFloat(o.Discount))
		production = production.Add(decimal.NewFromFloat(o.ShippingCharges))
		burnt = burnt.Add(decimal.NewFromFloat(o.Tax))
	}
	marketing := gross.Mul(MarketingRate).Round(0)
	net := gross.Sub(discount).Sub(production).Sub(burnt).Sub(marketing)

	return RevenueDistribution{
		GrossIncome:    gross.InexactFloat64(),
		NetMargin:      net.InexactFloat64(),
		Discount:       discount.InexactFloat64(),
		ProductionCost: production.InexactFloat64(),
		Burnt:          burnt.InexactFloat64(),
		MarketingCost:  marketing.InexactFloat64(),
	}
}
