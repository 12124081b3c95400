// Package database provides database store implementations.
package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*userStore
	*orgStore
	*boardStore
	*columnStore
	*cardStore
	*labelStore
	*commentStore
	*attachmentStore
	*customerStore
	*inviteStore
	*activityStore
	*authStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		userStore:       &userStore{},
		orgStore:        &orgStore{},
		boardStore:      &boardStore{},
		columnStore:     &columnStore{},
		cardStore:       &cardStore{},
		labelStore:      &labelStore{},
		commentStore:    &commentStore{},
		attachmentStore: &attachmentStore{},
		customerStore:   &customerStore{},
		inviteStore:     &inviteStore{},
		activityStore:   &activityStore{},
		authStore:       &authStore{},
	}

	return s
}

// in expands an IN (?) query for ids and rebinds it for the handler.
func in(h db.Handler, query string, ids []int64, args ...interface{}) (string, []interface{}, error) {
	q, qargs, err := sqlx.In(query, append(args, ids)...)
	if err != nil {
		return "", nil, err //nolint:wrapcheck
	}
	return h.Rebind(q), qargs, nil
}
