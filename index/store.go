package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/lib/pq"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/models"
)

const (
	findLimit = 100
	pageSize  = 100
)

// Migrate brings the schema at dbURL up to date with the files at sourceURL.
func Migrate(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Store is the Postgres box index. It satisfies orders.Finder.
type Store struct {
	db          *sql.DB
	getBox      *sql.Stmt
	insBox      *sql.Stmt
	setSpend    *sql.Stmt
	findBoxes   *sql.Stmt
	getProgress *sql.Stmt
	setProgress *sql.Stmt
}

var _ orders.Finder = (*Store)(nil)

func Open(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(db *sql.DB) (s *Store, err error) {
	s = &Store{db: db}
	if s.getBox, err = db.Prepare(`SELECT outpoint, address, value, tokens, registers, height
		FROM boxes
		WHERE outpoint=$1`,
	); err != nil {
		return
	}

	if s.insBox, err = db.Prepare(`INSERT INTO boxes(outpoint, txid, vout, address, value, tokens, registers, height, kind)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT(outpoint) DO UPDATE SET
			height=EXCLUDED.height,
			kind=EXCLUDED.kind`,
	); err != nil {
		return
	}

	if s.setSpend, err = db.Prepare(`UPDATE boxes
		SET spend=$2,
			state=CASE WHEN kind IS NULL THEN state ELSE $3 END
		WHERE outpoint=$1 AND spend IS NULL`,
	); err != nil {
		return
	}

	if s.findBoxes, err = db.Prepare(`SELECT outpoint, address, value, tokens, registers, height
		FROM boxes
		WHERE spend IS NULL
			AND ($1 = '' OR address = $1)
			AND value BETWEEN $2 AND $3
			AND ($4 = '' OR tokens->0->>'id' = $4)
			AND (height, outpoint) > ($5, $6)
		ORDER BY height ASC, outpoint ASC
		LIMIT $7`,
	); err != nil {
		return
	}

	if s.getProgress, err = db.Prepare(`SELECT height
		FROM progress
		WHERE indexer=$1`,
	); err != nil {
		return
	}

	s.setProgress, err = db.Prepare(`INSERT INTO progress(indexer, height)
		VALUES($1, $2)
		ON CONFLICT(indexer) DO UPDATE
			SET height=$2`,
	)
	return
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBox upserts box. kind is nil for boxes that are not orders.
func (s *Store) SaveBox(ctx context.Context, box *models.Box, kind *orders.Kind) error {
	tokens, registers, err := encodeColumns(box)
	if err != nil {
		return err
	}
	var k sql.NullInt16
	if kind != nil {
		k = sql.NullInt16{Int16: int16(*kind), Valid: true}
	}
	_, err = s.insBox.ExecContext(ctx,
		[]byte(box.ID),
		box.ID.Txid(),
		box.ID.Vout(),
		box.Address,
		clampValue(box.Value),
		tokens,
		registers,
		box.Height,
		k,
	)
	return err
}

// MarkSpent records the spend of outpoint and, for order boxes, its final state.
func (s *Store) MarkSpent(ctx context.Context, outpoint models.Outpoint, spend []byte, state orders.State) (bool, error) {
	res, err := s.setSpend.ExecContext(ctx, []byte(outpoint), spend, int16(state))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) GetBox(ctx context.Context, outpoint models.Outpoint) (*models.Box, error) {
	box, err := scanBox(s.getBox.QueryRowContext(ctx, []byte(outpoint)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &orders.OrderError{Kind: orders.ErrNotFound, Msg: "box " + outpoint.String()}
	}
	return box, err
}

// FindBoxes narrows by address, value and first token id in SQL and checks
// the rest with the matcher. It pages through the index until findLimit boxes
// pass spec and accept, so boxes that fail in Go never hide later matches.
func (s *Store) FindBoxes(ctx context.Context, spec orders.BoxSpec, accept func(*models.Box) bool) ([]*models.Box, error) {
	address, _ := spec.Address()
	r, ok := spec.Value()
	if !ok {
		r = orders.AtLeast(0)
	}
	var tokenID string
	if ts := spec.Tokens(); len(ts) > 0 && ts[0] != nil {
		tokenID = ts[0].ID
	}

	next := func(ctx context.Context, after cursor) ([]*models.Box, error) {
		return s.findPage(ctx, address, r, tokenID, after)
	}
	keep := func(b *models.Box) bool {
		return spec.Matches(b) && (accept == nil || accept(b))
	}
	return collect(ctx, next, pageSize, findLimit, keep)
}

func (s *Store) findPage(ctx context.Context, address string, r orders.ValueRange, tokenID string, after cursor) (boxes []*models.Box, err error) {
	rows, err := s.findBoxes.QueryContext(ctx,
		address,
		clampValue(r.Min),
		clampValue(r.Max),
		tokenID,
		after.height,
		after.outpoint,
		pageSize,
	)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		box, err := scanBox(rows)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	err = rows.Err()
	return
}

// cursor is the (height, outpoint) key of the last box seen.
type cursor struct {
	height   int64
	outpoint []byte
}

type pageFunc func(ctx context.Context, after cursor) ([]*models.Box, error)

// collect reads pages in key order until limit boxes pass keep or a short
// page shows the index is exhausted.
func collect(ctx context.Context, next pageFunc, size, limit int, keep func(*models.Box) bool) ([]*models.Box, error) {
	var boxes []*models.Box
	after := cursor{height: -1, outpoint: []byte{}}
	for {
		page, err := next(ctx, after)
		if err != nil {
			return nil, err
		}
		for _, b := range page {
			if !keep(b) {
				continue
			}
			boxes = append(boxes, b)
			if len(boxes) == limit {
				return boxes, nil
			}
		}
		if len(page) < size {
			return boxes, nil
		}
		last := page[len(page)-1]
		after = cursor{height: int64(last.Height), outpoint: last.ID}
	}
}

func (s *Store) Progress(ctx context.Context, indexer string) (height uint64, err error) {
	err = s.getProgress.QueryRowContext(ctx, indexer).Scan(&height)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	return
}

func (s *Store) SetProgress(ctx context.Context, indexer string, height uint32) error {
	_, err := s.setProgress.ExecContext(ctx, indexer, height)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBox(row scanner) (*models.Box, error) {
	var outpoint []byte
	var value int64
	var tokens, registers []byte
	box := &models.Box{}
	if err := row.Scan(&outpoint, &box.Address, &value, &tokens, &registers, &box.Height); err != nil {
		return nil, err
	}
	box.ID = models.Outpoint(outpoint)
	box.Value = uint64(value)
	if err := decodeColumns(box, tokens, registers); err != nil {
		return nil, err
	}
	return box, nil
}

func encodeColumns(box *models.Box) (tokens, registers []byte, err error) {
	t := box.Tokens
	if t == nil {
		t = []models.Token{}
	}
	if tokens, err = json.Marshal(t); err != nil {
		return
	}
	registers, err = json.Marshal(box.Registers)
	return
}

func decodeColumns(box *models.Box, tokens, registers []byte) error {
	if err := json.Unmarshal(tokens, &box.Tokens); err != nil {
		return err
	}
	if len(box.Tokens) == 0 {
		box.Tokens = nil
	}
	return json.Unmarshal(registers, &box.Registers)
}

// clampValue maps ledger values onto BIGINT.
func clampValue(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
