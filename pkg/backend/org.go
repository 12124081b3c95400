package backend

import (
	"context"
	"errors"

	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

func (d *Backend) organization(ctx context.Context, h db.Handler, orgID int64) (proto.Organization, error) {
	o, err := d.store.GetOrgByID(ctx, h, orgID)
	if err != nil {
		return proto.Organization{}, dbErr(err, proto.ErrOrganizationNotFound)
	}
	ms, err := d.store.ListOrgMembers(ctx, h, orgID)
	if err != nil {
		return proto.Organization{}, dbErr(err, nil)
	}

	org := proto.Organization{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
		Members:   make([]proto.Member, 0, len(ms)),
	}
	for _, m := range ms {
		org.Members = append(org.Members, toMember(m))
	}
	return org, nil
}

// GetCurrentOrganization returns the caller's organization with its members.
func (d *Backend) GetCurrentOrganization(ctx context.Context, user proto.User) (proto.Organization, error) {
	m, err := d.membership(ctx, d.db, user)
	if err != nil {
		return proto.Organization{}, err
	}
	org, err := d.organization(ctx, d.db, m.OrganizationID)
	if err != nil {
		return org, err
	}
	org.CurrentUserRole = m.Role
	return org, nil
}

// UpdateOrganization renames the caller's organization or changes its slug.
func (d *Backend) UpdateOrganization(ctx context.Context, user proto.User, in proto.UpdateOrganizationInput) (proto.Organization, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Organization{}, err //nolint:wrapcheck
	}

	m, err := d.adminMembership(ctx, d.db, user)
	if err != nil {
		return proto.Organization{}, err
	}

	err = d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		o, err := d.store.GetOrgByID(ctx, tx, m.OrganizationID)
		if err != nil {
			return dbErr(err, proto.ErrOrganizationNotFound)
		}
		name, slug := o.Name, o.Slug
		if in.Name != nil {
			name = *in.Name
		}
		if in.Slug != nil && *in.Slug != o.Slug {
			slug = *in.Slug
			other, err := d.store.FindOrgBySlug(ctx, tx, slug)
			if err == nil && other.ID != o.ID {
				return proto.ErrSlugTaken
			} else if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
				return dbErr(err, nil)
			}
		}

		err = d.store.UpdateOrg(ctx, tx, o.ID, name, slug)
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return proto.ErrSlugTaken
		}
		return dbErr(err, nil)
	})
	if err != nil {
		return proto.Organization{}, err //nolint:wrapcheck
	}

	org, err := d.organization(ctx, d.db, m.OrganizationID)
	org.CurrentUserRole = m.Role
	return org, err
}

// orgMember loads a member of the caller's organization.
func (d *Backend) orgMember(ctx context.Context, h db.Handler, caller models.OrganizationMember, memberID int64) (models.OrganizationMember, error) {
	target, err := d.store.GetOrgMember(ctx, h, memberID)
	if err != nil {
		return target, dbErr(err, proto.ErrMemberNotFound)
	}
	if target.OrganizationID != caller.OrganizationID {
		return target, proto.ErrMemberNotFound
	}
	return target, nil
}

// UpdateMemberRole changes the role of a member. Only owners grant or
// revoke ownership, and the last owner keeps it.
func (d *Backend) UpdateMemberRole(ctx context.Context, user proto.User, in proto.UpdateMemberRoleInput) (proto.Member, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Member{}, err //nolint:wrapcheck
	}

	var updated proto.Member
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		caller, err := d.adminMembership(ctx, tx, user)
		if err != nil {
			return err
		}
		target, err := d.orgMember(ctx, tx, caller, in.MemberID)
		if err != nil {
			return err
		}

		if (target.Role == access.Owner || in.Role == access.Owner) && caller.Role != access.Owner {
			return proto.ErrOwnerRequired
		}
		if target.Role == access.Owner && in.Role != access.Owner {
			n, err := d.store.CountOrgMembersWithRole(ctx, tx, caller.OrganizationID, access.Owner)
			if err != nil {
				return dbErr(err, nil)
			}
			if n <= 1 {
				return proto.ErrLastOwner
			}
		}

		if target.Role != in.Role {
			if err := d.store.SetOrgMemberRole(ctx, tx, target.ID, in.Role); err != nil {
				return dbErr(err, nil)
			}
		}

		ms, err := d.store.ListOrgMembers(ctx, tx, caller.OrganizationID)
		if err != nil {
			return dbErr(err, nil)
		}
		for _, m := range ms {
			if m.ID == target.ID {
				updated = toMember(m)
				return nil
			}
		}
		return proto.ErrMemberNotFound
	})
	if err != nil {
		return proto.Member{}, err //nolint:wrapcheck
	}

	d.logger.Info("member role updated", "member", updated.ID, "role", updated.Role, "by", user.ID)
	return updated, nil
}

// RemoveMember removes a member from the caller's organization. Nobody can
// remove themselves.
func (d *Backend) RemoveMember(ctx context.Context, user proto.User, in proto.RemoveMemberInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	return d.db.TransactionContext(ctx, func(tx *db.Tx) error { //nolint:wrapcheck
		caller, err := d.adminMembership(ctx, tx, user)
		if err != nil {
			return err
		}
		target, err := d.orgMember(ctx, tx, caller, in.MemberID)
		if err != nil {
			return err
		}
		if target.UserID == user.ID {
			return proto.ErrRemoveSelf
		}
		if target.Role == access.Owner && caller.Role != access.Owner {
			return proto.ErrOwnerRequired
		}
		return dbErr(d.store.RemoveOrgMember(ctx, tx, target.ID), proto.ErrMemberNotFound)
	})
}

// ListOrganizations returns every organization with its members.
func (d *Backend) ListOrganizations(ctx context.Context) ([]proto.Organization, error) {
	rows, err := d.store.ListOrgs(ctx, d.db)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	orgs := make([]proto.Organization, 0, len(rows))
	for _, o := range rows {
		org, err := d.organization(ctx, d.db, o.ID)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// CreateOrganization creates an organization owned by the user with the
// given email. The user is created when missing.
func (d *Backend) CreateOrganization(ctx context.Context, name, slug, ownerEmail string) (proto.Organization, error) {
	ownerEmail = utils.NormalizeEmail(ownerEmail)
	if err := utils.Validate(struct {
		Name  string `json:"name" validate:"required,min=1,max=100"`
		Slug  string `json:"slug" validate:"required,min=1,max=50,slug"`
		Email string `json:"email" validate:"required,email"`
	}{name, slug, ownerEmail}); err != nil {
		return proto.Organization{}, err //nolint:wrapcheck
	}

	var orgID int64
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		u, err := d.store.FindUserByEmail(ctx, tx, ownerEmail)
		if errors.Is(err, db.ErrRecordNotFound) {
			u, err = d.store.CreateUser(ctx, tx, ownerEmail, defaultName(ownerEmail))
		}
		if err != nil {
			return dbErr(err, nil)
		}
		o, err := d.store.CreateOrg(ctx, tx, name, slug)
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return proto.ErrSlugTaken
		} else if err != nil {
			return dbErr(err, nil)
		}
		orgID = o.ID
		_, err = d.store.AddOrgMember(ctx, tx, o.ID, u.ID, access.Owner)
		return dbErr(err, nil)
	})
	if err != nil {
		return proto.Organization{}, err //nolint:wrapcheck
	}
	return d.organization(ctx, d.db, orgID)
}
