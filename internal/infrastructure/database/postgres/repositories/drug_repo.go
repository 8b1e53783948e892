package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/qaioz/molstore/internal/domain/drug"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

const drugColumns = `drug_id, name, description, created_at, updated_at`

type postgresDrugRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresDrugRepo returns the PostgreSQL drug.Repository.
func NewPostgresDrugRepo(conn *postgres.Connection, log logging.Logger) drug.Repository {
	return &postgresDrugRepo{conn: conn, log: log}
}

func (r *postgresDrugRepo) Save(ctx context.Context, d *drug.Drug) (*drug.Drug, error) {
	var saved *drug.Drug
	err := r.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO drugs (name, description)
			VALUES ($1, $2)
			RETURNING `+drugColumns, d.Name, nullableString(d.Description))

		var err error
		saved, err = scanDrug(row)
		if err != nil {
			return err
		}
		if err := insertComponents(ctx, tx, saved.ID, d.Molecules); err != nil {
			return err
		}
		saved.Molecules = append([]drug.Component{}, d.Molecules...)
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "Check if the molecules exist in the database")
		}
		r.log.Error("failed to insert drug", logging.Err(err), logging.String("name", d.Name))
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert drug")
	}
	return saved, nil
}

func insertComponents(ctx context.Context, q queryExecutor, drugID int64, comps []drug.Component) error {
	if len(comps) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO drug_molecule (drug_id, molecule_id, quantity, quantity_unit) VALUES `)
	args := make([]interface{}, 0, len(comps)*4)
	for i, c := range comps {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, drugID, c.MoleculeID, c.Quantity, string(c.QuantityUnit))
	}
	_, err := q.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *postgresDrugRepo) FindByID(ctx context.Context, id int64) (*drug.Drug, error) {
	db := r.conn.DB()
	d, err := scanDrug(db.QueryRowContext(ctx, `SELECT `+drugColumns+` FROM drugs WHERE drug_id = $1`, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, drug.NotFound(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get drug")
	}

	comps, err := loadComponents(ctx, db, []int64{id})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load drug molecules")
	}
	d.Molecules = componentsOf(comps, id)
	return d, nil
}

func (r *postgresDrugRepo) FindAll(ctx context.Context, page, pageSize int) ([]*drug.Drug, error) {
	db := r.conn.DB()
	rows, err := db.QueryContext(ctx,
		`SELECT `+drugColumns+` FROM drugs ORDER BY drug_id LIMIT $1 OFFSET $2`,
		pageSize, offset(page, pageSize))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list drugs")
	}
	defer rows.Close()

	drugs := make([]*drug.Drug, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan drug")
		}
		drugs = append(drugs, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate drugs")
	}
	if len(drugs) == 0 {
		return drugs, nil
	}

	comps, err := loadComponents(ctx, db, ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load drug molecules")
	}
	for _, d := range drugs {
		d.Molecules = componentsOf(comps, d.ID)
	}
	return drugs, nil
}

func (r *postgresDrugRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.conn.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM drugs`).Scan(&total); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count drugs")
	}
	return total, nil
}

func (r *postgresDrugRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.DB().ExecContext(ctx, `DELETE FROM drugs WHERE drug_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete drug")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete drug")
	}
	if affected == 0 {
		return drug.NotFound(id)
	}
	return nil
}

// loadComponents returns the components of every drug in ids keyed by drug.
func loadComponents(ctx context.Context, q queryExecutor, ids []int64) (map[int64][]drug.Component, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT drug_id, molecule_id, quantity, quantity_unit
		FROM drug_molecule
		WHERE drug_id = ANY($1)
		ORDER BY drug_id, molecule_id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]drug.Component, len(ids))
	for rows.Next() {
		var (
			drugID int64
			c      drug.Component
			unit   string
		)
		if err := rows.Scan(&drugID, &c.MoleculeID, &c.Quantity, &unit); err != nil {
			return nil, err
		}
		c.QuantityUnit = drug.QuantityUnit(unit)
		out[drugID] = append(out[drugID], c)
	}
	return out, rows.Err()
}

func componentsOf(all map[int64][]drug.Component, id int64) []drug.Component {
	if comps, ok := all[id]; ok {
		return comps
	}
	return []drug.Component{}
}

func scanDrug(row scanner) (*drug.Drug, error) {
	var (
		d    drug.Drug
		desc sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &desc, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d.Description = &desc.String
	}
	d.Molecules = []drug.Component{}
	return &d, nil
}

//Personal.AI order the ending
