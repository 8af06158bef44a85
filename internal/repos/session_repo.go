package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRow is one persisted sign-in. The bearer token is stored sealed;
// the repo never sees it in clear.
type SessionRow struct {
	ID          string `db:"id"`
	AdminID     string `db:"admin_id"`
	DisplayName string `db:"display_name"`
	Email       string `db:"email"`
	Role        string `db:"role"`
	TokenSealed []byte `db:"token_sealed"`
	ExpiresAt   string `db:"expires_at"`
}

func (r SessionRow) Expiry() time.Time {
	t, _ := time.Parse(time.RFC3339, r.ExpiresAt)
	return t
}

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Upsert(row SessionRow) error {
	_, err := r.DB.NamedExec(`INSERT INTO admin_sessions(id,admin_id,display_name,email,role,token_sealed,expires_at,updated_at)
                          VALUES(:id,:admin_id,:display_name,:email,:role,:token_sealed,:expires_at,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET
                            admin_id=excluded.admin_id,
                            display_name=excluded.display_name,
                            email=excluded.email,
                            role=excluded.role,
                            token_sealed=excluded.token_sealed,
                            expires_at=excluded.expires_at,
                            updated_at=CURRENT_TIMESTAMP`, row)
	return err
}

func (r *SessionRepo) Delete(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM admin_sessions WHERE id=?`, sid)
	return err
}

// LoadAll returns every session that has not expired at now and removes the
// ones that have.
func (r *SessionRepo) LoadAll(now time.Time) ([]SessionRow, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := now.UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`DELETE FROM admin_sessions WHERE expires_at <= ?`, cutoff); err != nil {
		return nil, err
	}
	var rows []SessionRow
	if err := tx.Select(&rows, `
      SELECT id,admin_id,display_name,email,role,token_sealed,expires_at
      FROM admin_sessions
      ORDER BY id`); err != nil {
		return nil, err
	}
	return rows, tx.Commit()
}
