package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
)

// ResourceService resolves monetized resources and facilitator context for
// the protocol engine. The admin surface owns writes; this service only reads.
type ResourceService struct {
	db *gorm.DB
}

// NewResourceService constructs a ResourceService.
func NewResourceService(db *gorm.DB) (*ResourceService, error) {
	if db == nil {
		return nil, errors.New("resource service: db is required")
	}
	return &ResourceService{db: db}, nil
}

// Resolve looks a resource up by id first, then by slug scoped to the
// facilitator. Inactive resources resolve to ErrResourceInactive so callers
// can answer 410 instead of 404.
func (s *ResourceService) Resolve(ctx context.Context, idOrSlug, facilitatorID string) (*models.PaidResource, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, apperrors.ErrResourceNotFound
	}

	var resource models.PaidResource
	err := s.db.WithContext(ctx).Where("id = ?", idOrSlug).First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).
			Where("slug = ? AND facilitator_id = ?", idOrSlug, facilitatorID).
			First(&resource).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resource service: resolve %q: %w", idOrSlug, err)
	}

	if !resource.Active {
		return nil, apperrors.ErrResourceInactive
	}

	return &resource, nil
}

// ResolveEndpoint resolves an API-gateway resource by slug within the
// facilitator, validating the request method against the configured one.
// An empty method skips the check.
func (s *ResourceService) ResolveEndpoint(ctx context.Context, slug, facilitatorID, method string) (*models.PaidResource, error) {
	var resource models.PaidResource
	err := s.db.WithContext(ctx).
		Where("slug = ? AND facilitator_id = ? AND variant = ?", strings.TrimSpace(slug), facilitatorID, models.VariantEndpoint).
		First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resource service: resolve endpoint %q: %w", slug, err)
	}

	if !resource.Active {
		return nil, apperrors.ErrResourceInactive
	}

	configured := strings.ToUpper(strings.TrimSpace(resource.Method))
	if method != "" && configured != "" && configured != "ANY" && configured != strings.ToUpper(method) {
		return nil, apperrors.ErrMethodNotAllowed
	}

	return &resource, nil
}

// FacilitatorByHost resolves the tenant for a request host, falling back to
// the default facilitator slug when no hostname matches.
func (s *ResourceService) FacilitatorByHost(ctx context.Context, host, defaultSlug string) (*models.Facilitator, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var facilitator models.Facilitator
	err := s.db.WithContext(ctx).Where("hostname = ?", host).First(&facilitator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && defaultSlug != "" {
		err = s.db.WithContext(ctx).Where("slug = ?", defaultSlug).First(&facilitator).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resource service: resolve facilitator for host %q: %w", host, err)
	}

	return &facilitator, nil
}

// Identities snapshots the facilitator's custodial identities into the
// per-network address map requirement building consumes.
func (s *ResourceService) Identities(ctx context.Context, facilitatorID string) (x402.IdentityMap, error) {
	var rows []models.ChainIdentity
	if err := s.db.WithContext(ctx).
		Where("facilitator_id = ?", facilitatorID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resource service: list identities: %w", err)
	}

	identities := make(x402.IdentityMap, len(rows))
	for _, row := range rows {
		identities[row.Network] = row.Address
	}
	return identities, nil
}
