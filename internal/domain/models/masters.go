package models

// Farmer is a registered milk supplier.
type Farmer struct {
	ID       string `json:"id"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name"`
	BranchID string `json:"branchId,omitempty"`
	Category string `json:"category,omitempty"`
}

// Branch is a collection unit / village society the cooperative buys
// through.
type Branch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
