package domain

// TestFailure represents a failed or errored test identity
type TestFailure struct {
	Test     string `json:"test"`
	Module   string `json:"module"`
	Path     string `json:"path,omitempty"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Worker   int    `json:"worker"`
	Resolved bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}
