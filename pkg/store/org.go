package store

import (
	"context"

	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// OrgStore is an interface for managing organizations and their members.
type OrgStore interface {
	CreateOrg(ctx context.Context, h db.Handler, name string, slug string) (models.Organization, error)
	GetOrgByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error)
	FindOrgBySlug(ctx context.Context, h db.Handler, slug string) (models.Organization, error)
	ListOrgs(ctx context.Context, h db.Handler) ([]models.Organization, error)
	UpdateOrg(ctx context.Context, h db.Handler, id int64, name string, slug string) error

	AddOrgMember(ctx context.Context, h db.Handler, orgID int64, userID int64, role access.Role) (models.OrganizationMember, error)
	GetOrgMember(ctx context.Context, h db.Handler, id int64) (models.OrganizationMember, error)
	FindOrgMember(ctx context.Context, h db.Handler, orgID int64, userID int64) (models.OrganizationMember, error)
	FindOrgMemberByEmail(ctx context.Context, h db.Handler, orgID int64, email string) (models.OrganizationMember, error)
	FindFirstMembership(ctx context.Context, h db.Handler, userID int64) (models.OrganizationMember, error)
	ListOrgMembers(ctx context.Context, h db.Handler, orgID int64) ([]models.MemberWithUser, error)
	CountOrgMembersWithRole(ctx context.Context, h db.Handler, orgID int64, role access.Role) (int, error)
	SetOrgMemberRole(ctx context.Context, h db.Handler, id int64, role access.Role) error
	RemoveOrgMember(ctx context.Context, h db.Handler, id int64) error
}
