package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ResourceVariant distinguishes the two monetized resource shapes.
type ResourceVariant string

const (
	// VariantLink is a payment-page style resource under /pay.
	VariantLink ResourceVariant = "link"
	// VariantEndpoint is an API-gateway resource under /u; always proxy-like.
	VariantEndpoint ResourceVariant = "endpoint"
)

// ResourceKind is the closed set of post-payment behaviors for link resources.
type ResourceKind string

const (
	KindPayment  ResourceKind = "payment"
	KindRedirect ResourceKind = "redirect"
	KindProxy    ResourceKind = "proxy"
)

// PaidResource is a monetized resource configuration. It is created and
// edited by the admin surface; the protocol engine treats it as read-only.
type PaidResource struct {
	BaseModel

	FacilitatorID string          `gorm:"type:uuid;index;not null" json:"facilitator_id"`
	Slug          string          `gorm:"index" json:"slug"`
	Variant       ResourceVariant `gorm:"not null;default:link" json:"variant"`
	Kind          ResourceKind    `gorm:"not null;default:payment" json:"kind"`

	// Pricing, amount in atomic units of the asset.
	Network string `gorm:"not null" json:"network"`
	Asset   string `gorm:"not null" json:"asset"`
	Amount  string `gorm:"not null" json:"amount"`
	PayTo   string `gorm:"not null" json:"pay_to"`

	Description string `json:"description"`

	// Target behavior. TargetURL is required for redirect and proxy kinds.
	TargetURL      string         `json:"target_url"`
	Method         string         `json:"method"`
	ForwardHeaders datatypes.JSON `json:"forward_headers"`

	// AccessTTLSeconds of 0 means pay-per-request: no entitlement window.
	AccessTTLSeconds int `gorm:"default:0" json:"access_ttl_seconds"`

	WebhookURL    string `json:"webhook_url"`
	WebhookSecret string `json:"-"`

	// Active carries no column default: with one set, gorm omits the field
	// from INSERTs whenever it is false.
	Active bool `gorm:"not null" json:"active"`

	Facilitator *Facilitator `gorm:"foreignKey:FacilitatorID" json:"facilitator,omitempty"`
}

// IsProxyLike reports whether requests are relayed to a target origin.
// Endpoint resources are always proxy-like regardless of Kind.
func (r *PaidResource) IsProxyLike() bool {
	return r.Variant == VariantEndpoint || r.Kind == KindProxy
}

// EffectiveKind collapses the variant split into one kind tag so callers can
// dispatch exhaustively in a single switch.
func (r *PaidResource) EffectiveKind() ResourceKind {
	if r.Variant == VariantEndpoint {
		return KindProxy
	}
	return r.Kind
}

// ForwardHeaderNames decodes the configured header allow-list. A malformed
// column yields an empty list rather than an error: no headers are relayed.
func (r *PaidResource) ForwardHeaderNames() []string {
	if len(r.ForwardHeaders) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(r.ForwardHeaders, &names); err != nil {
		return nil
	}
	return names
}

// RequiresTarget reports whether the configuration must carry a target URL.
func (r *PaidResource) RequiresTarget() bool {
	k := r.EffectiveKind()
	return k == KindRedirect || k == KindProxy
}
