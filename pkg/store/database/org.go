package database

import (
	"context"

	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
	"github.com/printnow/portal/pkg/utils"
)

type orgStore struct{}

var _ store.OrgStore = (*orgStore)(nil)

// CreateOrg implements store.OrgStore.
func (s *orgStore) CreateOrg(ctx context.Context, h db.Handler, name string, slug string) (models.Organization, error) {
	if err := utils.ValidateSlug(slug); err != nil {
		return models.Organization{}, err //nolint:wrapcheck
	}

	query := h.Rebind(`INSERT INTO organizations (name, slug, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, name, slug); err != nil {
		return models.Organization{}, err //nolint:wrapcheck
	}

	return s.GetOrgByID(ctx, h, id)
}

// GetOrgByID implements store.OrgStore.
func (*orgStore) GetOrgByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindOrgBySlug implements store.OrgStore.
func (*orgStore) FindOrgBySlug(ctx context.Context, h db.Handler, slug string) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE slug = ?;`)
	err := h.GetContext(ctx, &m, query, slug)
	return m, err //nolint:wrapcheck
}

// ListOrgs implements store.OrgStore.
func (*orgStore) ListOrgs(ctx context.Context, h db.Handler) ([]models.Organization, error) {
	var ms []models.Organization
	query := h.Rebind(`SELECT * FROM organizations ORDER BY id;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}

// UpdateOrg implements store.OrgStore.
func (*orgStore) UpdateOrg(ctx context.Context, h db.Handler, id int64, name string, slug string) error {
	query := h.Rebind(`UPDATE organizations SET name = ?, slug = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, slug, id)
	return err //nolint:wrapcheck
}

// AddOrgMember implements store.OrgStore.
func (s *orgStore) AddOrgMember(ctx context.Context, h db.Handler, orgID int64, userID int64, role access.Role) (models.OrganizationMember, error) {
	query := h.Rebind(`INSERT INTO org_members (org_id, user_id, role, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, orgID, userID, role); err != nil {
		return models.OrganizationMember{}, err //nolint:wrapcheck
	}

	return s.GetOrgMember(ctx, h, id)
}

// GetOrgMember implements store.OrgStore.
func (*orgStore) GetOrgMember(ctx context.Context, h db.Handler, id int64) (models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := h.Rebind(`SELECT * FROM org_members WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindOrgMember implements store.OrgStore.
func (*orgStore) FindOrgMember(ctx context.Context, h db.Handler, orgID int64, userID int64) (models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := h.Rebind(`SELECT * FROM org_members WHERE org_id = ? AND user_id = ?;`)
	err := h.GetContext(ctx, &m, query, orgID, userID)
	return m, err //nolint:wrapcheck
}

// FindOrgMemberByEmail implements store.OrgStore.
func (*orgStore) FindOrgMemberByEmail(ctx context.Context, h db.Handler, orgID int64, email string) (models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := h.Rebind(`SELECT org_members.* FROM org_members
			INNER JOIN users ON users.id = org_members.user_id
			WHERE org_members.org_id = ? AND users.email = ?;`)
	err := h.GetContext(ctx, &m, query, orgID, utils.NormalizeEmail(email))
	return m, err //nolint:wrapcheck
}

// FindFirstMembership implements store.OrgStore.
func (*orgStore) FindFirstMembership(ctx context.Context, h db.Handler, userID int64) (models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := h.Rebind(`SELECT * FROM org_members WHERE user_id = ?
			ORDER BY created_at ASC, id ASC LIMIT 1;`)
	err := h.GetContext(ctx, &m, query, userID)
	return m, err //nolint:wrapcheck
}

// ListOrgMembers implements store.OrgStore.
func (*orgStore) ListOrgMembers(ctx context.Context, h db.Handler, orgID int64) ([]models.MemberWithUser, error) {
	var ms []models.MemberWithUser
	query := h.Rebind(`SELECT org_members.*, users.email, users.name, users.avatar_url
			FROM org_members
			INNER JOIN users ON users.id = org_members.user_id
			WHERE org_members.org_id = ?
			ORDER BY org_members.created_at ASC, org_members.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, orgID)
	return ms, err //nolint:wrapcheck
}

// CountOrgMembersWithRole implements store.OrgStore.
func (*orgStore) CountOrgMembersWithRole(ctx context.Context, h db.Handler, orgID int64, role access.Role) (int, error) {
	var count int
	query := h.Rebind(`SELECT COUNT(*) FROM org_members WHERE org_id = ? AND role = ?;`)
	err := h.GetContext(ctx, &count, query, orgID, role)
	return count, err //nolint:wrapcheck
}

// SetOrgMemberRole implements store.OrgStore.
func (*orgStore) SetOrgMemberRole(ctx context.Context, h db.Handler, id int64, role access.Role) error {
	query := h.Rebind(`UPDATE org_members SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, role, id)
	return err //nolint:wrapcheck
}

// RemoveOrgMember implements store.OrgStore.
func (*orgStore) RemoveOrgMember(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM org_members WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}
