package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhub-app/workhub-backend/internal/auth/domain"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
	wsrepo "github.com/workhub-app/workhub-backend/internal/workspaces/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// SignUp inserts the user, the role profile and the private workspace in
// one transaction.
func (r *UserRepository) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	var user domain.User
	err := postgres.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		const insertUser = `
INSERT INTO users (user_id, email, name, role)
VALUES ($1, $2, $3, $4)
RETURNING user_id, email, name, role, created_at;
`
		err := tx.QueryRowContext(ctx, insertUser, req.UserID, req.Email, req.Name, req.Role).
			Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.CreatedAt)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return domain.ErrUserExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		switch req.Role {
		case domain.RoleSeeker:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO seeker_profiles (seeker_id, cv, portfolio) VALUES ($1, $2, $3)`,
				req.UserID, req.CV, req.Portfolio)
		case domain.RoleOwner:
			_, err = tx.ExecContext(ctx, `INSERT INTO owner_profiles (owner_id) VALUES ($1)`, req.UserID)
		}
		if err != nil {
			return fmt.Errorf("insert %s profile: %w", req.Role, err)
		}

		return wsrepo.NewWorkspaceRepository(tx).Insert(ctx, wsdomain.NewPrivate(req.UserID))
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT user_id, email, name, role, created_at FROM users WHERE user_id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT user_id, email, name, role, created_at FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) getOne(ctx context.Context, q string, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetSeekerProfile(ctx context.Context, seekerID string) (*domain.SeekerProfile, error) {
	const q = `SELECT seeker_id, cv, portfolio FROM seeker_profiles WHERE seeker_id = $1`
	var (
		p             domain.SeekerProfile
		cv, portfolio sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, seekerID).Scan(&p.SeekerID, &cv, &portfolio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get seeker profile: %w", err)
	}
	if cv.Valid {
		p.CV = &cv.String
	}
	if portfolio.Valid {
		p.Portfolio = &portfolio.String
	}
	return &p, nil
}

// UpdateSeekerProfile overwrites cv and portfolio.
func (r *UserRepository) UpdateSeekerProfile(ctx context.Context, p *domain.SeekerProfile) error {
	const q = `UPDATE seeker_profiles SET cv = $2, portfolio = $3 WHERE seeker_id = $1`
	res, err := r.db.ExecContext(ctx, q, p.SeekerID, p.CV, p.Portfolio)
	if err != nil {
		return fmt.Errorf("update seeker profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
