package dto

type UpdateSettingsRequest struct {
	PendingActive     *bool `json:"pending_active"`
	PreparingActive   *bool `json:"preparing_active"`
	PerishableControl *bool `json:"perishable_control"`
}

type SettingsResponse struct {
	PendingActive     bool     `json:"pending_active"`
	PreparingActive   bool     `json:"preparing_active"`
	PerishableControl bool     `json:"perishable_control"`
	// ActiveFlow is the resolved ordered status list the panel drives
	// transitions with.
	ActiveFlow []string `json:"active_flow"`
}
