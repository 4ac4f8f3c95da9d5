package session

import (
	"context"
	"time"

	"mindweaver-server/internal/model"
	"mindweaver-server/internal/repository"
	"mindweaver-server/pkg/util"
)

// DBStore keeps records in the login_sessions table.
// Expired rows read as absent and are deleted when encountered.
type DBStore struct {
	repo *repository.SessionRepository
	now  func() time.Time
}

// NewDBStore creates a DBStore.
func NewDBStore(repo *repository.SessionRepository) *DBStore {
	return &DBStore{repo: repo, now: time.Now}
}

func (s *DBStore) Save(ctx context.Context, rec *Record) error {
	return s.repo.Create(ctx, &model.LoginSession{
		ID:         rec.ID,
		AccountID:  rec.Identity.AccountID,
		Email:      rec.Identity.Email,
		Name:       rec.Identity.Name,
		PictureURL: util.StringPtr(rec.Identity.Picture),
		ExpiresAt:  rec.ExpiresAt,
	})
}

func (s *DBStore) Get(ctx context.Context, id string) (*Record, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	if row.Expired(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &Record{
		ID: row.ID,
		Identity: Identity{
			AccountID: row.AccountID,
			Email:     row.Email,
			Name:      row.Name,
			Picture:   util.StringValue(row.PictureURL),
		},
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Sweep removes every expired row.
func (s *DBStore) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
