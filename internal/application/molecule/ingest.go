package molecule

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"sort"
	"strings"

	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

// bulkBatchSize is the number of rows per BulkInsert transaction.
const bulkBatchSize = 500

var requiredColumns = []string{"smiles", "name"}

const (
	modeValidated = "validated"
	modeBulk      = "bulk"
)

// csvRows reads the smiles and name fields of a CSV stream by header name.
type csvRows struct {
	r      *csv.Reader
	header map[string]int
}

func newCSVRows(r io.Reader) (*csvRows, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, invalidHeader(requiredColumns)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInvalidCSVHeader, "Invalid CSV header")
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, invalidHeader(missing)
	}
	return &csvRows{r: cr, header: header}, nil
}

func invalidHeader(missing []string) error {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	return errors.New(errors.ErrCodeInvalidCSVHeader, "Invalid CSV header").
		WithDetail("missing columns: " + strings.Join(sorted, ", "))
}

// next returns the smiles and name of the next row.  A malformed row yields
// a non-nil rowErr and the caller may continue; a non-nil err ends reading.
func (c *csvRows) next() (smiles, name string, rowErr, err error) {
	rec, err := c.r.Read()
	if err != nil {
		var perr *csv.ParseError
		if stderrors.As(err, &perr) {
			return "", "", err, nil
		}
		return "", "", nil, err
	}
	return rec[c.header["smiles"]], rec[c.header["name"]], nil, nil
}

// ImportCSV loads molecules from a CSV stream with at least the columns
// smiles and name.  With validate set every row is checked and saved on its
// own and bad rows are logged and skipped.  Without it rows are inserted
// unchecked in batches, each committed separately; a failing batch aborts the
// import.  The number of molecules inserted is returned.
func (s *serviceImpl) ImportCSV(ctx context.Context, r io.Reader, validate bool) (int64, error) {
	rows, err := newCSVRows(r)
	if err != nil {
		return 0, err
	}

	var added int64
	mode := modeBulk
	if validate {
		mode = modeValidated
		added, err = s.importValidated(ctx, rows)
	} else {
		added, err = s.importBulk(ctx, rows)
	}

	if added > 0 {
		s.metrics.MoleculesImportedTotal.WithLabelValues(mode).Add(float64(added))
		s.invalidate(ctx)
	}
	s.logger.Info("csv import finished",
		logging.String("mode", mode), logging.Int64("added", added), logging.Bool("failed", err != nil))
	return added, err
}

func (s *serviceImpl) importValidated(ctx context.Context, rows *csvRows) (int64, error) {
	var added int64
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		smiles, name, rowErr, err := rows.next()
		if stderrors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read CSV")
		}
		line++

		if rowErr != nil {
			s.skipRow("malformed", line, smiles, rowErr)
			continue
		}

		mol, err := domainMol.NewMolecule(s.matcher, smiles, &name)
		if errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES) {
			s.logger.Warn("Encountered invalid SMILES string", logging.String("smiles", smiles), logging.Int("line", line))
			s.metrics.ImportRowsSkippedTotal.WithLabelValues("invalid_smiles").Inc()
			continue
		}
		if err != nil {
			s.skipRow("error", line, smiles, err)
			continue
		}
		if _, err := s.repo.Save(ctx, mol); err != nil {
			if errors.IsCode(err, errors.ErrCodeMoleculeAlreadyExists) {
				s.logger.Warn("Duplicate SMILES string", logging.String("smiles", smiles), logging.Int("line", line))
				s.metrics.ImportRowsSkippedTotal.WithLabelValues("duplicate").Inc()
				continue
			}
			s.skipRow("error", line, smiles, err)
			continue
		}
		added++
	}
}

func (s *serviceImpl) skipRow(reason string, line int, smiles string, err error) {
	s.logger.Error("Error processing row",
		logging.String("reason", reason), logging.Int("line", line), logging.String("smiles", smiles), logging.Err(err))
	s.metrics.ImportRowsSkippedTotal.WithLabelValues(reason).Inc()
}

func (s *serviceImpl) importBulk(ctx context.Context, rows *csvRows) (int64, error) {
	var added int64
	batch := make([]*domainMol.Molecule, 0, bulkBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.repo.BulkInsert(ctx, batch)
		if err != nil {
			return err
		}
		added += n
		batch = make([]*domainMol.Molecule, 0, bulkBatchSize)
		return nil
	}

	for {
		smiles, name, rowErr, err := rows.next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return added, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read CSV")
		}
		if rowErr != nil {
			return added, errors.Wrap(rowErr, errors.ErrCodeBadRequest, "malformed CSV row")
		}

		batch = append(batch, domainMol.NewUnvalidated(s.matcher, smiles, &name))
		if len(batch) == bulkBatchSize {
			if err := flush(); err != nil {
				return added, err
			}
		}
	}
	if err := flush(); err != nil {
		return added, err
	}
	return added, nil
}

//Personal.AI order the ending
