package target

// Common targets, so callers avoid repeating builder chains.

func CartSubtotal() Target {
	return Cart().Phase(PhaseCartSubtotal).ApplyAggregate().MustBuild()
}

func CartGrandTotal() Target {
	return Cart().Phase(PhaseGrandTotal).ApplyAggregate().MustBuild()
}

func CartShipping() Target {
	return Cart().Phase(PhaseShipping).ApplyAggregate().MustBuild()
}

func CartTaxable() Target {
	return Cart().Phase(PhaseTaxable).ApplyAggregate().MustBuild()
}

func CartTax() Target {
	return Cart().Phase(PhaseTax).ApplyAggregate().MustBuild()
}

func ItemsPerItem() Target {
	return Items().Phase(PhaseItemDiscount).ApplyPerItem().MustBuild()
}

func ItemsPreItem() Target {
	return Items().Phase(PhasePreItem).ApplyAggregate().MustBuild()
}

func ShipmentsPerGroup() Target {
	return Shipments().Phase(PhaseShipping).ApplyPerGroup().MustBuild()
}

func PaymentsPerPayment() Target {
	return Payments().MustBuild()
}

func FulfillmentsPerGroup() Target {
	return Fulfillments().Phase(PhaseShipping).ApplyPerGroup().MustBuild()
}

func CustomAggregate() Target {
	return Custom().MustBuild()
}
