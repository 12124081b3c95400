package backend

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// Me returns the caller's profile.
func (d *Backend) Me(ctx context.Context, user proto.User) (proto.User, error) {
	u, err := d.store.GetUserByID(ctx, d.db, user.ID)
	if err != nil {
		return proto.User{}, dbErr(err, proto.ErrUserNotFound)
	}
	return toUser(u), nil
}

// ListUsersByBoard returns the members of the organization a board belongs
// to. These are the users a card of the board can be assigned to.
func (d *Backend) ListUsersByBoard(ctx context.Context, user proto.User, in proto.BoardIDInput) ([]proto.UserSummary, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	b, _, err := d.boardAccess(ctx, d.db, user, in.BoardID)
	if err != nil {
		return nil, err
	}
	ms, err := d.store.ListOrgMembers(ctx, d.db, b.OrganizationID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	users := make([]proto.UserSummary, 0, len(ms))
	for _, m := range ms {
		users = append(users, toMember(m).User)
	}
	return users, nil
}

// UpdateUser changes the caller's name or avatar.
func (d *Backend) UpdateUser(ctx context.Context, user proto.User, in proto.UpdateUserInput) (proto.User, error) {
	if err := utils.Validate(in); err != nil {
		return proto.User{}, err //nolint:wrapcheck
	}

	u, err := d.store.GetUserByID(ctx, d.db, user.ID)
	if err != nil {
		return proto.User{}, dbErr(err, proto.ErrUserNotFound)
	}
	name, avatar := u.Name, nullString(u.AvatarURL)
	if in.Name != nil {
		name = *in.Name
	}
	if in.AvatarURL != nil {
		avatar = in.AvatarURL
	}
	if err := d.store.UpdateUser(ctx, d.db, u.ID, name, avatar); err != nil {
		return proto.User{}, dbErr(err, nil)
	}
	return d.Me(ctx, user)
}

// ListUsers returns every user.
func (d *Backend) ListUsers(ctx context.Context) ([]proto.User, error) {
	ms, err := d.store.GetAllUsers(ctx, d.db)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	users := make([]proto.User, 0, len(ms))
	for _, m := range ms {
		users = append(users, toUser(m))
	}
	return users, nil
}

// AddUser creates a user the way a first sign in does: the user joins the
// organization that invited them or gets their own.
func (d *Backend) AddUser(ctx context.Context, email, name string) (proto.User, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.Validate(struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"omitempty,max=100"`
	}{email, name}); err != nil {
		return proto.User{}, err //nolint:wrapcheck
	}

	var u proto.User
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.provisionUser(ctx, tx, email, name)
		u = toUser(m)
		return err
	})
	return u, err //nolint:wrapcheck
}

// DeleteUser deletes a user by email.
func (d *Backend) DeleteUser(ctx context.Context, email string) error {
	u, err := d.store.FindUserByEmail(ctx, d.db, utils.NormalizeEmail(email))
	if err != nil {
		return dbErr(err, proto.ErrUserNotFound)
	}
	return dbErr(d.store.DeleteUser(ctx, d.db, u.ID), proto.ErrUserNotFound)
}
