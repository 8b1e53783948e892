package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

const moleculeColumns = `molecule_id, smiles, name, mass, created_at, updated_at`

// maxRowsPerInsert bounds a single multi-row INSERT so the statement stays
// well under the 65535 bind parameter limit.
const maxRowsPerInsert = 500

type postgresMoleculeRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresMoleculeRepo returns the PostgreSQL molecule.Repository.
func NewPostgresMoleculeRepo(conn *postgres.Connection, log logging.Logger) molecule.Repository {
	return &postgresMoleculeRepo{conn: conn, log: log}
}

func (r *postgresMoleculeRepo) Save(ctx context.Context, mol *molecule.Molecule) (*molecule.Molecule, error) {
	query := `
		INSERT INTO molecules (smiles, name, mass)
		VALUES ($1, $2, $3)
		RETURNING ` + moleculeColumns

	saved, err := scanMolecule(r.conn.DB().QueryRowContext(ctx, query, mol.SMILES, nullableString(mol.Name), mol.Mass))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrap(err, errors.ErrCodeMoleculeAlreadyExists, "Molecule with this SMILES already exists").
				WithDetail(fmt.Sprintf("smiles=%s", mol.SMILES))
		}
		r.log.Error("failed to insert molecule", logging.Err(err), logging.String("smiles", mol.SMILES))
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert molecule")
	}
	return saved, nil
}

func (r *postgresMoleculeRepo) FindByID(ctx context.Context, id int64) (*molecule.Molecule, error) {
	query := `SELECT ` + moleculeColumns + ` FROM molecules WHERE molecule_id = $1`

	mol, err := scanMolecule(r.conn.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, molecule.NotFound(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get molecule")
	}
	return mol, nil
}

func (r *postgresMoleculeRepo) FindAll(ctx context.Context, page, pageSize int, params molecule.SearchParams) ([]*molecule.Molecule, error) {
	f := buildMoleculeFilter(params)
	limitPh := f.arg(pageSize)
	offsetPh := f.arg(offset(page, pageSize))

	query := fmt.Sprintf(`SELECT %s FROM molecules%s ORDER BY %s LIMIT %s OFFSET %s`,
		moleculeColumns, f.where(), f.orderBy, limitPh, offsetPh)

	start := time.Now()
	rows, err := r.conn.DB().QueryContext(ctx, query, f.args...)
	if err != nil {
		logging.LogDatabaseQuery(r.log, query, time.Since(start), 0, err)
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list molecules")
	}
	defer rows.Close()

	mols := make([]*molecule.Molecule, 0)
	for rows.Next() {
		mol, err := scanMolecule(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan molecule")
		}
		mols = append(mols, mol)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate molecules")
	}
	logging.LogDatabaseQuery(r.log, query, time.Since(start), int64(len(mols)), nil)
	return mols, nil
}

func (r *postgresMoleculeRepo) Count(ctx context.Context, params molecule.SearchParams) (int64, error) {
	f := buildMoleculeFilter(params)
	query := `SELECT COUNT(*) FROM molecules` + f.where()

	var total int64
	if err := r.conn.DB().QueryRowContext(ctx, query, f.args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count molecules")
	}
	return total, nil
}

func (r *postgresMoleculeRepo) UpdateName(ctx context.Context, id int64, name *string) (*molecule.Molecule, error) {
	query := `
		UPDATE molecules SET name = $2, updated_at = NOW()
		WHERE molecule_id = $1
		RETURNING ` + moleculeColumns

	mol, err := scanMolecule(r.conn.DB().QueryRowContext(ctx, query, id, nullableString(name)))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, molecule.NotFound(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update molecule")
	}
	return mol, nil
}

func (r *postgresMoleculeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.DB().ExecContext(ctx, `DELETE FROM molecules WHERE molecule_id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(err, errors.ErrCodeMoleculeInUse, "Molecule is used by a drug").
				WithDetail(fmt.Sprintf("molecule_id=%d", id))
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete molecule")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete molecule")
	}
	if affected == 0 {
		return molecule.NotFound(id)
	}
	return nil
}

func (r *postgresMoleculeRepo) BulkInsert(ctx context.Context, mols []*molecule.Molecule) (int64, error) {
	if len(mols) == 0 {
		return 0, nil
	}

	var inserted int64
	err := r.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(mols); start += maxRowsPerInsert {
			end := start + maxRowsPerInsert
			if end > len(mols) {
				end = len(mols)
			}
			n, err := insertMoleculeRows(ctx, tx, mols[start:end])
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		r.log.Error("bulk insert failed", logging.Err(err), logging.Int("rows", len(mols)))
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to bulk insert molecules")
	}
	r.log.Debug("bulk insert done", logging.Int("rows", len(mols)), logging.Int64("inserted", inserted))
	return inserted, nil
}

// insertMoleculeRows writes one multi-row INSERT, skipping SMILES that are
// already stored.
func insertMoleculeRows(ctx context.Context, q queryExecutor, mols []*molecule.Molecule) (int64, error) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO molecules (smiles, name, mass) VALUES `)
	args := make([]interface{}, 0, len(mols)*3)
	for i, m := range mols {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, m.SMILES, nullableString(m.Name), m.Mass)
	}
	sb.WriteString(` ON CONFLICT (smiles) DO NOTHING`)

	res, err := q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// moleculeFilter accumulates WHERE conditions and positional arguments.
type moleculeFilter struct {
	conditions []string
	args       []interface{}
	orderBy    string
}

func (f *moleculeFilter) arg(v interface{}) string {
	f.args = append(f.args, v)
	return fmt.Sprintf("$%d", len(f.args))
}

func (f *moleculeFilter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

func buildMoleculeFilter(p molecule.SearchParams) *moleculeFilter {
	f := &moleculeFilter{orderBy: "molecule_id"}

	if p.MinMass != nil {
		f.conditions = append(f.conditions, "mass >= "+f.arg(*p.MinMass))
	}
	if p.MaxMass != nil {
		f.conditions = append(f.conditions, "mass <= "+f.arg(*p.MaxMass))
	}

	switch {
	case p.Name != nil:
		ph := f.arg(*p.Name)
		f.conditions = append(f.conditions, "name % "+ph)
		f.orderBy = fmt.Sprintf("similarity(name, %s) DESC, molecule_id", ph)
	case p.OrderBy != nil && *p.OrderBy == molecule.OrderByMass:
		f.orderBy = fmt.Sprintf("mass %s, molecule_id", strings.ToUpper(string(p.SortOrder())))
	}
	return f
}

func scanMolecule(row scanner) (*molecule.Molecule, error) {
	var (
		m    molecule.Molecule
		name sql.NullString
	)
	if err := row.Scan(&m.ID, &m.SMILES, &name, &m.Mass, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		m.Name = &name.String
	}
	return &m, nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

//Personal.AI order the ending
