package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mbarroso/escala-engine/internal/domain"
	"github.com/mbarroso/escala-engine/internal/repository"
)

// TemplateResolver expands a template-backed request into a full descriptor.
// It re-checks the caller's area access against current membership at
// execution time: templates are long-lived and the batch runs long after the
// request was accepted, so request-time checks are not good enough.
type TemplateResolver struct {
	templates repository.TemplateRepository
	areas     repository.AreaMembershipRepository
}

func NewTemplateResolver(
	templates repository.TemplateRepository,
	areas repository.AreaMembershipRepository,
) (*TemplateResolver, error) {
	if templates == nil {
		return nil, fmt.Errorf("template repository is required")
	}
	if areas == nil {
		return nil, fmt.Errorf("area membership repository is required")
	}

	return &TemplateResolver{
		templates: templates,
		areas:     areas,
	}, nil
}

// Resolve loads the template and rebuilds the request's area set, role
// requirements, schedule type, and music template from it. Caller-supplied
// fields (quantity, name, times, recurrence, start date, auto-fill) are
// preserved untouched.
func (r *TemplateResolver) Resolve(
	ctx context.Context,
	req domain.BulkScheduleRequest,
	userID string,
) (domain.BulkScheduleRequest, error) {
	if req.TemplateID == nil || strings.TrimSpace(*req.TemplateID) == "" {
		return domain.BulkScheduleRequest{}, fmt.Errorf("%w: template id is required", domain.ErrValidation)
	}
	templateID := strings.TrimSpace(*req.TemplateID)

	tpl, err := r.templates.GetByIDForUser(ctx, templateID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.BulkScheduleRequest{}, fmt.Errorf("%w: template %s", domain.ErrNotFound, templateID)
		}
		return domain.BulkScheduleRequest{}, fmt.Errorf("failed to load template %s: %w", templateID, err)
	}

	if len(tpl.Roles) == 0 {
		return domain.BulkScheduleRequest{}, fmt.Errorf("%w: template %s has no role requirements",
			domain.ErrValidation, templateID)
	}

	templateAreas := tpl.AreaIDs()

	userAreas, err := r.areas.UserAreas(ctx, userID)
	if err != nil {
		return domain.BulkScheduleRequest{}, fmt.Errorf("failed to load user areas: %w", err)
	}

	if missing := missingAreas(templateAreas, userAreas); len(missing) > 0 {
		return domain.BulkScheduleRequest{}, fmt.Errorf(
			"%w: template references areas no longer accessible: %s",
			domain.ErrValidation, strings.Join(missing, ", "))
	}

	resolved := req
	resolved.AreaIDs = templateAreas
	resolved.ScheduleType = tpl.ScheduleType
	resolved.RoleRequirements = make([]domain.RoleRequirement, 0, len(tpl.Roles))
	for _, role := range tpl.Roles {
		resolved.RoleRequirements = append(resolved.RoleRequirements, domain.RoleRequirement{
			AreaID:    role.AreaID,
			RoleID:    role.RoleID,
			Headcount: role.Headcount,
		})
	}
	if tpl.MusicTemplateID != nil {
		resolved.MusicTemplateID = tpl.MusicTemplateID
	}

	return resolved, nil
}
