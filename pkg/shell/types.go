package shell

import "time"

// State is the serialisable view of the shell.
type State struct {
	View      View   `json:"view"`
	PanelOpen bool   `json:"panel_open"`
	Alert     *Alert `json:"alert,omitempty"`
	Toast     *Toast `json:"toast,omitempty"`
	// RootCauseConfirmed is nil until the engineer confirms or rejects.
	RootCauseConfirmed *bool `json:"root_cause_confirmed,omitempty"`
}

// ToastKind drives the toast colour.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient notification.
type Toast struct {
	Action    string    `json:"action"`
	Kind      ToastKind `json:"kind"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Alert is an entry of the executive alert feed.
type Alert struct {
	ID          int    `json:"id"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Batch       string `json:"batch"`
	RootCause   string `json:"root_cause"`
}

var actionToasts = map[string]Toast{
	"chargeback":  {Kind: ToastSuccess, Message: "Supplier claim generated for Pacific Hops Co. - Lot #8821 ($47,250)"},
	"quarantine":  {Kind: ToastWarning, Message: "Batch #992 quarantined in WMS - 847 pallets locked"},
	"maintenance": {Kind: ToastInfo, Message: "Work order #WO-4421 created for Line 4 Seamer Head #3"},
}

// Actions lists the engineer actions the shell understands.
func Actions() []string {
	return []string{"chargeback", "quarantine", "maintenance"}
}

// DefaultAlerts returns the quality alert feed.
func DefaultAlerts() []Alert {
	return []Alert{
		{ID: 1, Severity: "critical", Title: "Isovaleric Spike in Batch #992", Description: `400% increase in "Cheesy" complaints for West Coast IPA`, Batch: "#992", RootCause: "Hop Lot #8821"},
		{ID: 2, Severity: "high", Title: "Thermal Excursion Route 66", Description: "Phoenix distribution - cargo temp reached 38°C", Batch: "#985", RootCause: "Carrier A"},
		{ID: 3, Severity: "medium", Title: "Pressure Drift Line 4", Description: "Filler bowl pressure dropped to 12 PSI", Batch: "#994", RootCause: "Seamer Head #3"},
	}
}
