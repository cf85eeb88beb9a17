package domain

import "time"

// TemplateRoleRequirement is one role slot a template asks for.
type TemplateRoleRequirement struct {
	ID         string
	TemplateID string
	AreaID     string
	RoleID     string
	Headcount  int
	Position   int
}

// ScheduleTemplate is a saved, reusable role/area requirement set owned by a
// user. The area set is derived from the role requirements at resolution
// time, never stored separately.
type ScheduleTemplate struct {
	ID              string
	Name            string
	ScheduleType    ScheduleType
	MusicTemplateID *string
	UserID          string
	Roles           []TemplateRoleRequirement
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AreaIDs returns the distinct areas referenced by the template's role
// requirements, in first-seen order.
func (t *ScheduleTemplate) AreaIDs() []string {
	if t == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(t.Roles))
	areas := make([]string, 0, len(t.Roles))
	for _, role := range t.Roles {
		if _, ok := seen[role.AreaID]; ok {
			continue
		}
		seen[role.AreaID] = struct{}{}
		areas = append(areas, role.AreaID)
	}

	return areas
}
