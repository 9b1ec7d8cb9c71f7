package service

import (
	"context"
	"strings"
	"time"

	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/domain"
	"github.com/complyhub/compliance-service/internal/repository"
	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

// riskPermissions declares who may do what on the risk register. Generic
// users read everything but may only change entries they created, and may
// never destroy one.
var riskPermissions = auth.Matrix{
	auth.ActionList: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeOwn,
	},
	auth.ActionRetrieve: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeAny,
	},
	auth.ActionCreate: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeOwn,
	},
	auth.ActionUpdate: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeOwn,
	},
	auth.ActionPartialUpdate: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeOwn,
	},
	auth.ActionDestroy: {
		auth.RoleAdmin: auth.ScopeAny, auth.RoleDPO: auth.ScopeAny, auth.RoleUser: auth.ScopeNone,
	},
}

// RiskService exposes authorization-gated access to the risk register.
type RiskService struct {
	risks  repository.RiskRepository
	engine *auth.Engine
}

// NewRiskService builds the service.
func NewRiskService(risks repository.RiskRepository, engine *auth.Engine) *RiskService {
	return &RiskService{risks: risks, engine: engine}
}

// List returns the risks the caller may see. Own scope pre-filters the
// query to records owned by the caller so list-time authorization and
// query-time filtering enforce the same rule.
func (s *RiskService) List(ctx context.Context, p auth.Principal, limit, offset int) ([]domain.Risk, error) {
	scope, err := s.engine.Authorize(p, riskPermissions, auth.ActionList)
	if err != nil {
		return nil, err
	}
	if scope == auth.ScopeOwn {
		return s.risks.ListByOwner(ctx, p.IdentityID, limit, offset)
	}
	return s.risks.List(ctx, limit, offset)
}

// Get returns a single risk after an object-level check.
func (s *RiskService) Get(ctx context.Context, p auth.Principal, id string) (*domain.Risk, error) {
	if _, err := s.engine.Authorize(p, riskPermissions, auth.ActionRetrieve); err != nil {
		return nil, err
	}
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.AuthorizeObject(p, riskPermissions, auth.ActionRetrieve, risk.CreatedByID); err != nil {
		return nil, err
	}
	return risk, nil
}

// Create inserts a risk owned by the caller.
func (s *RiskService) Create(ctx context.Context, p auth.Principal, title, description string, dueDate *time.Time) (*domain.Risk, error) {
	if _, err := s.engine.Authorize(p, riskPermissions, auth.ActionCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	risk := &domain.Risk{
		Title:       title,
		Description: description,
		Status:      domain.RiskStatusOpen,
		DueDate:     dueDate,
		CreatedByID: p.IdentityID,
	}
	if err := s.risks.Create(ctx, risk); err != nil {
		return nil, err
	}
	return risk, nil
}

// Update replaces mutable fields after an ownership-aware check.
func (s *RiskService) Update(ctx context.Context, p auth.Principal, id string, action auth.Action, apply func(*domain.Risk)) (*domain.Risk, error) {
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.AuthorizeObject(p, riskPermissions, action, risk.CreatedByID); err != nil {
		return nil, err
	}
	apply(risk)
	if strings.TrimSpace(risk.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if err := s.risks.Update(ctx, risk); err != nil {
		return nil, err
	}
	return risk, nil
}

// Delete removes a risk after an ownership-aware check.
func (s *RiskService) Delete(ctx context.Context, p auth.Principal, id string) error {
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.AuthorizeObject(p, riskPermissions, auth.ActionDestroy, risk.CreatedByID); err != nil {
		return err
	}
	return s.risks.Delete(ctx, id)
}
