package models

// Facilitator is a tenant operating monetized resources. Wallet custody and
// domain provisioning live in the admin surface; the protocol engine only
// reads the fields it needs to resolve tenants and sign settlements.
type Facilitator struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Hostname string `gorm:"index" json:"hostname"`

	// FacilitatorURL is the verify/settle endpoint advertised to payers.
	FacilitatorURL string `json:"facilitator_url"`

	Resources  []PaidResource  `gorm:"foreignKey:FacilitatorID" json:"resources,omitempty"`
	Identities []ChainIdentity `gorm:"foreignKey:FacilitatorID" json:"identities,omitempty"`
}

// ChainIdentity is a custodial signing identity the facilitator holds for one
// network. Key material is managed elsewhere; the engine only needs the
// public address (fee payer injection, payment attribution).
type ChainIdentity struct {
	BaseModel

	FacilitatorID string `gorm:"type:uuid;index;not null" json:"facilitator_id"`
	Network       string `gorm:"index;not null" json:"network"`
	Address       string `gorm:"not null" json:"address"`
}
