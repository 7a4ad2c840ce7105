package contract

import "time"

// Party roles. A contract references exactly one party per role.
const (
	RoleCustomer   = "customer"
	RoleContractor = "contractor"
)

// Document types attached to a contract.
const (
	DocTypeContract   = "contract"
	DocTypeAct        = "act"
	DocTypeAddendum   = "addendum"
	DocTypeAttachment = "attachment"
)

// Party is one side of a contract, a customer or a contractor.
type Party struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	INN     string `json:"inn,omitempty"`
	KPP     string `json:"kpp,omitempty"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role"`
}

// Contract holds the registered requisites of a single contract.
// Dates are ISO-8601 strings as they appear in the source document.
type Contract struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	Date         string    `json:"date"`
	Subject      string    `json:"subject,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	Deadline     string    `json:"deadline,omitempty"`
	Penalties    string    `json:"penalties,omitempty"`
	CustomerID   int64     `json:"customer_id"`
	ContractorID int64     `json:"contractor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Document is a file registered against a contract, the contract scan
// itself or a follow-up such as an act or an addendum.
type Document struct {
	ID          int64  `json:"id"`
	ContractID  int64  `json:"contract_id"`
	DocType     string `json:"doc_type"`
	FilePath    string `json:"file_path"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// ValidRole reports whether role names a known party role
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleContractor
}
