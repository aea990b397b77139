package service

import "caixapos/internal/model"

// canonicalRank orders the intermediate statuses pending < preparing < ready.
// Delivered sits implicitly after the last active one.
func canonicalRank(s model.OrderStatus) int {
	switch s {
	case model.StatusPending:
		return 0
	case model.StatusPreparing:
		return 1
	case model.StatusReady:
		return 2
	default:
		return -1
	}
}

// ResolveActiveFlow maps the store toggles to the ordered list of statuses
// the panel drives orders through. Ready is always present: even a store
// that disables both toggles needs a state meaning "hand it over". Nil
// settings resolve to the full default flow.
func ResolveActiveFlow(settings *model.StoreSettings) []model.OrderStatus {
	pending, preparing := true, true
	if settings != nil {
		pending = settings.PendingActive
		preparing = settings.PreparingActive
	}

	flow := make([]model.OrderStatus, 0, 3)
	if pending {
		flow = append(flow, model.StatusPending)
	}
	if preparing {
		flow = append(flow, model.StatusPreparing)
	}
	return append(flow, model.StatusReady)
}

// NextStatus returns where an advance from current lands under the given
// flow. ok=false means current is terminal and cannot advance.
//
// The current status may be absent from the flow: orders keep whatever
// status they are in when the store reconfigures its toggles. Such orders
// advance to the first active status ranked above their own, or straight to
// delivered when none remains.
func NextStatus(flow []model.OrderStatus, current model.OrderStatus) (model.OrderStatus, bool) {
	if current.Terminal() {
		return "", false
	}
	rank := canonicalRank(current)
	for _, s := range flow {
		if canonicalRank(s) > rank {
			return s, true
		}
	}
	return model.StatusDelivered, true
}

// cancellableStatuses is every state a cancel is accepted from.
var cancellableStatuses = []model.OrderStatus{
	model.StatusPending,
	model.StatusPreparing,
	model.StatusReady,
}
