package forecast

// =============================================================================
// PRE-ORDER EVALUATION
// =============================================================================

// PreOrderCycleDays is the cycle length added to the lead time when looking
// ahead from the reorder point.
const PreOrderCycleDays = 365

// EvaluatePreOrder decides whether stock runs out before the cycle after the
// primary reorder completes. The lookahead date is
// reorder_point + 365 + leadtime. A pre-order is required only when that date
// lies inside the simulated horizon and present stock is exactly zero there.
// The updated quantity subtracts everything consumed from the start up to and
// including the reorder point.
//
// It never fails: a missing event, a lookahead beyond the horizon, or stock
// still on hand all yield a not-required adjustment with zero quantity.
func EvaluatePreOrder(samples []DaySample, event *ReorderEvent) PreOrderAdjustment {
	if event == nil || len(samples) == 0 {
		return PreOrderAdjustment{}
	}

	lookahead := event.ReorderPointDate.AddDays(PreOrderCycleDays + event.LeadTimeDays)
	adj := PreOrderAdjustment{LookaheadDate: lookahead}

	idx := DaysBetween(samples[0].Date, lookahead)
	if idx < 0 || idx >= len(samples) {
		return adj
	}
	if samples[idx].PresentStock != 0 {
		return adj
	}

	consumed := 0.0
	for _, s := range samples {
		if s.Date.After(event.ReorderPointDate) {
			break
		}
		consumed += s.DailyConsumption
	}

	adj.Required = true
	adj.UpdatedQuantity = event.Quantity - consumed
	return adj
}
