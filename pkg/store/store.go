// Package store provides data store functionality.
package store

// Store is an interface for managing every Portal record.
type Store interface {
	UserStore
	OrgStore
	BoardStore
	ColumnStore
	CardStore
	LabelStore
	CommentStore
	AttachmentStore
	CustomerStore
	InviteStore
	ActivityStore
	AuthStore
}
