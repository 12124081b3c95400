package backend

import (
	"database/sql"
	"encoding/json"

	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
)

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullInt64(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: i != 0}
}

func toUser(m models.User) proto.User {
	return proto.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		AvatarURL: nullString(m.AvatarURL),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toMember(m models.MemberWithUser) proto.Member {
	return proto.Member{
		ID:        m.ID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt.UTC(),
		User: proto.UserSummary{
			ID:        m.UserID,
			Email:     m.Email,
			Name:      m.Name,
			AvatarURL: nullString(m.AvatarURL),
		},
	}
}

func toBoard(m models.Board) proto.Board {
	return proto.Board{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    nullString(m.Description),
		Archived:       m.Archived,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
		Columns:        []proto.Column{},
	}
}

func toColumn(m models.Column) proto.Column {
	return proto.Column{
		ID:       m.ID,
		BoardID:  m.BoardID,
		Name:     m.Name,
		Color:    nullString(m.Color),
		Position: m.Position,
	}
}

func toCard(m models.Card) proto.Card {
	c := proto.Card{
		ID:          m.ID,
		BoardID:     m.BoardID,
		ColumnID:    m.ColumnID,
		Title:       m.Title,
		Description: nullString(m.Description),
		Position:    m.Position,
		Priority:    proto.Priority(m.Priority),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		Assignees:   []proto.UserSummary{},
		Labels:      []proto.Label{},
	}
	if m.DueDate.Valid {
		due := m.DueDate.Time.UTC()
		c.DueDate = &due
	}
	return c
}

func toLabel(m models.Label) proto.Label {
	return proto.Label{
		ID:        m.ID,
		BoardID:   m.BoardID,
		Name:      m.Name,
		Color:     m.Color,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toComment(m models.CommentWithAuthor) proto.Comment {
	c := proto.Comment{
		ID:        m.ID,
		CardID:    m.CardID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.UserID.Valid {
		c.User = &proto.UserSummary{
			ID:        m.UserID.Int64,
			Email:     m.UserEmail.String,
			Name:      m.UserName.String,
			AvatarURL: nullString(m.UserAvatarURL),
		}
	}
	if m.CustomerID.Valid {
		c.Customer = &proto.NamedRef{ID: m.CustomerID.Int64, Name: m.CustomerName.String}
	}
	if m.ContactID.Valid {
		c.Contact = &proto.NamedRef{ID: m.ContactID.Int64, Name: m.ContactName.String}
	}
	return c
}

func toAttachment(m models.Attachment) proto.Attachment {
	return proto.Attachment{
		ID:          m.ID,
		CardID:      m.CardID,
		Name:        m.Name,
		URL:         m.URL,
		StoragePath: m.StoragePath,
		Size:        m.Size,
		MimeType:    m.MimeType,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func toCustomer(m models.Customer) proto.Customer {
	return proto.Customer{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Email:          m.Email,
		AccessCode:     m.AccessCode,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
		Boards:         []proto.BoardRef{},
		Contacts:       []proto.Contact{},
	}
}

func toContact(m models.CustomerContact) proto.Contact {
	return proto.Contact{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Name:       m.Name,
		Email:      m.Email,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

func toActivity(m models.ActivityWithUser) proto.Activity {
	a := proto.Activity{
		ID:        m.ID,
		BoardID:   m.BoardID,
		Action:    proto.Action(m.Action),
		Metadata:  json.RawMessage(m.Metadata),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if !json.Valid(a.Metadata) {
		a.Metadata = json.RawMessage("{}")
	}
	if m.CardID.Valid {
		id := m.CardID.Int64
		a.CardID = &id
	}
	if m.UserID.Valid {
		a.User = &proto.UserSummary{
			ID:        m.UserID.Int64,
			Name:      m.UserName.String,
			AvatarURL: nullString(m.UserAvatarURL),
		}
	}
	return a
}
