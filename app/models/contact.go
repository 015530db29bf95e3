package models

// ContactInfo mirrors the contact_info subtree: registration numbers,
// the registered address, and the sales team list.
type ContactInfo struct {
	GSTIN   string          `json:"gstin"`
	FSSAI   string          `json:"fssai"`
	Address string          `json:"address"`
	Team    []ContactPerson `json:"team"`
}

type ContactPerson struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
}
