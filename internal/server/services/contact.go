package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
)

// CreateContactInput carries a contact-form submission.
type CreateContactInput struct {
	Name        string
	Email       string
	Topic       string
	Subject     string
	Description string
}

// ContactService manages inquiries. Status values are not validated: any
// string an admin sends is stored as-is.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repomanager: m}
}

// Create stores a new inquiry with status "new" and empty notes.
func (s *ContactService) Create(ctx context.Context, in CreateContactInput) (*models.Contact, error) {
	c := &models.Contact{
		Name:        in.Name,
		Email:       in.Email,
		Topic:       in.Topic,
		Subject:     in.Subject,
		Description: in.Description,
		Status:      common.ContactStatusNew,
		Notes:       "",
	}

	created, err := s.repomanager.Contacts(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}
	return created, nil
}

func (s *ContactService) Get(ctx context.Context, id int64) (*models.Contact, error) {
	c, err := s.repomanager.Contacts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading contact: %w", err)
	}
	return c, nil
}

// List returns a page of contacts. The status filter is lower-cased.
func (s *ContactService) List(ctx context.Context, page models.ListPage, status string) (*ListResult[*models.Contact], error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	status = strings.ToLower(status)

	repo := s.repomanager.Contacts(s.db)

	items, err := repo.List(ctx, page, status)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	total, err := repo.Count(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("error counting contacts: %w", err)
	}

	return &ListResult[*models.Contact]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

// Update sets status and/or notes. A missing contact is reported before an
// empty update.
func (s *ContactService) Update(ctx context.Context, id int64, status, notes *string) (*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if status == nil && notes == nil {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrorValidation)
	}

	c, err := repo.Update(ctx, id, status, notes)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating contact: %w", err)
	}
	return c, nil
}

// Delete removes a contact and returns it as it was.
func (s *ContactService) Delete(ctx context.Context, id int64) (*models.Contact, error) {
	c, err := s.repomanager.Contacts(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error deleting contact: %w", err)
	}
	return c, nil
}

// Stats counts contacts per canonical status and per topic. Total includes
// contacts with non-canonical statuses.
func (s *ContactService) Stats(ctx context.Context) (*models.ContactStats, error) {
	repo := s.repomanager.Contacts(s.db)

	byStatus, err := repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting contacts by status: %w", err)
	}
	byTopic, err := repo.CountByTopic(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting contacts by topic: %w", err)
	}

	stats := &models.ContactStats{TopicBreakdown: make(map[string]int64, len(byTopic))}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch row.Key {
		case common.ContactStatusNew:
			stats.New = row.Count
		case common.ContactStatusInProgress:
			stats.InProgress = row.Count
		case common.ContactStatusResolved:
			stats.Resolved = row.Count
		}
	}
	for _, row := range byTopic {
		stats.TopicBreakdown[row.Key] = row.Count
	}
	return stats, nil
}
