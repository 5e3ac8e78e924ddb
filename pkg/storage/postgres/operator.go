package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func newOperatorStore(db *sqlx.DB) *operatorStore {
	return &operatorStore{
		db: db,
	}
}

type operatorStore struct {
	db *sqlx.DB
}

type sqlDataOperator struct {
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *operatorStore) FindByEmail(email string) (*model.Operator, error) {
	d := sqlDataOperator{}

	query := "SELECT * FROM operators WHERE email = $1"
	if err := s.db.Get(&d, query, email); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find operator")
	}

	return &model.Operator{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func (s *operatorStore) Create(m *model.Operator) error {
	if m.Role == "" {
		m.Role = "admin"
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().Round(time.Second).UTC()
	}

	d := sqlDataOperator{
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}

	query := `INSERT INTO operators (email, password_hash, role, created_at)
		VALUES (:email, :password_hash, :role, :created_at)`
	if _, err := s.db.NamedExec(query, &d); err != nil {
		if conflict := translateUniqueViolation(err); conflict == storage.ErrConflict {
			return conflict
		}
		return errors.Wrap(err, "failed to create operator")
	}

	return nil
}
