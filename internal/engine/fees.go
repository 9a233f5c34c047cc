package engine

// FeeParams parameterizes the market fee model. All percentages are in
// percent form (1.37 means 1.37%). AverageRelists is a count, not a percent.
type FeeParams struct {
	BrokerFeePercent      float64
	SalesTaxPercent       float64
	BuyBufferPercent      float64
	AverageRelists        float64
	RelistDiscountPercent float64
}

// CostToPlaceBuyOrder returns the total outlay to acquire one unit via a
// standing buy order: the quoted price loaded by the buy buffer (expected
// upward drift while the order sits), plus relist fees, plus the broker fee.
func (f FeeParams) CostToPlaceBuyOrder(price float64) float64 {
	loaded := price * (1 + f.BuyBufferPercent/100)
	relist := loaded * (f.BrokerFeePercent / 100) * (1 - f.RelistDiscountPercent/100) * f.AverageRelists
	broker := loaded * (f.BrokerFeePercent / 100)
	return loaded + relist + broker
}

// ProceedsFromSellOrder returns the net proceeds from disposing of one unit
// via a standing sell order: the quoted price discounted by the buffer,
// minus relist fees, broker fee, and sales tax.
func (f FeeParams) ProceedsFromSellOrder(price float64) float64 {
	loaded := price * (1 - f.BuyBufferPercent/100)
	relist := loaded * (f.BrokerFeePercent / 100) * (1 - f.RelistDiscountPercent/100) * f.AverageRelists
	broker := loaded * (f.BrokerFeePercent / 100)
	tax := loaded * (f.SalesTaxPercent / 100)
	return loaded - relist - broker - tax
}

// ProceedsFromSellingIntoBuyOrder returns the net proceeds from immediate
// execution against an existing buy order. Only sales tax applies; there is
// no broker or relist cost. Convention: this is always proceeds from
// disposal (tax subtracted), never a cost basis.
func (f FeeParams) ProceedsFromSellingIntoBuyOrder(price float64) float64 {
	return price * (1 - f.SalesTaxPercent/100)
}

// CostToBuyFromSellOrder returns the cost of immediate execution against an
// existing sell order. Identity: sales tax is paid by the seller and no
// listing occurs.
func (f FeeParams) CostToBuyFromSellOrder(price float64) float64 {
	return price
}
