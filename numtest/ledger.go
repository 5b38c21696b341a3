package numtest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRuns   = "runs"
	tableTrials = "trials"

	statusOK      = "ok"
	statusSkipped = "skipped"
	statusFailed  = "failed"
)

// Ledger records every run and trial in a sqlite database.
// A failing trial can be reproduced from the recorded run seed.
type Ledger struct {
	Path string
	db   *sql.DB
}

// TrialRecord is a row of the trials table.
type TrialRecord struct {
	Run     string
	Pass    int
	Op      string
	Kind    string
	Dims    []int
	Seed    uint64
	Status  string
	Detail  string
	Seconds float64
}

// RunRecord is a row of the runs table.
type RunRecord struct {
	ID      string
	Seed    uint64
	Started time.Time
}

func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareLedger(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, fmt.Sprintf("db %s", dbPath))
	}
	return &Ledger{Path: dbPath, db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun stores a new run and returns its id.
func (l *Ledger) BeginRun(seed uint64, started time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	id := uuid.NewString()
	sqlStr := fmt.Sprintf(`INSERT INTO %s (id, seed, started) VALUES (?, ?, ?)`, tableRuns)
	args := []any{id, int64(seed), started.UTC().Format(time.RFC3339Nano)}
	if _, err := l.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return id, nil
}

// Seed returns the seed of a recorded run.
func (l *Ledger) Seed(run string) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT seed FROM %s WHERE id=?`, tableRuns)
	var seed int64
	if err := l.db.QueryRowContext(ctx, sqlStr, run).Scan(&seed); err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("run %s", run))
	}
	return uint64(seed), nil
}

// Runs returns the recorded runs, oldest first.
func (l *Ledger) Runs() ([]RunRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT id, seed, started FROM %s ORDER BY rowid`, tableRuns)
	rows, err := l.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var r RunRecord
		var seed int64
		var started string
		if err := rows.Scan(&r.ID, &seed, &started); err != nil {
			return nil, errors.Wrap(err, "")
		}
		r.Seed = uint64(seed)
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, errors.Wrap(err, "")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return runs, nil
}

func (l *Ledger) Record(r TrialRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT INTO %s (run, pass, op, kind, dims, seed, status, detail, seconds) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableTrials)
	args := []any{r.Run, r.Pass, r.Op, r.Kind, formatDims(r.Dims), int64(r.Seed), r.Status, r.Detail, r.Seconds}
	if _, err := l.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

// Trials returns the trials of a run in the order they were recorded.
func (l *Ledger) Trials(run string) ([]TrialRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT run, pass, op, kind, dims, seed, status, detail, seconds FROM %s WHERE run=? ORDER BY rowid`, tableTrials)
	rows, err := l.db.QueryContext(ctx, sqlStr, run)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	records := make([]TrialRecord, 0)
	for rows.Next() {
		var r TrialRecord
		var dims string
		var seed int64
		if err := rows.Scan(&r.Run, &r.Pass, &r.Op, &r.Kind, &dims, &seed, &r.Status, &r.Detail, &r.Seconds); err != nil {
			return nil, errors.Wrap(err, "")
		}
		r.Seed = uint64(seed)
		if r.Dims, err = parseDims(dims); err != nil {
			return nil, errors.Wrap(err, "")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return records, nil
}

func prepareLedger(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, seed INTEGER, started TEXT) STRICT`, tableRuns)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run TEXT, pass INTEGER, op TEXT, kind TEXT, dims TEXT, seed INTEGER, status TEXT, detail TEXT, seconds REAL) STRICT`, tableTrials)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func newTrialRecord(run string, t Trial, err error) TrialRecord {
	r := TrialRecord{
		Run:     run,
		Pass:    t.Pass,
		Op:      t.Op.String(),
		Kind:    t.Kind.String(),
		Dims:    t.Dims,
		Seed:    t.Stream,
		Status:  statusOK,
		Seconds: t.Elapsed.Seconds(),
	}
	switch {
	case err != nil:
		r.Status = statusFailed
		r.Detail = err.Error()
	case t.Skipped:
		r.Status = statusSkipped
	default:
		r.Detail = strconv.FormatFloat(t.MaxErr, 'g', -1, 64)
	}
	return r
}

func formatDims(dims []int) string {
	s := make([]string, 0, len(dims))
	for _, d := range dims {
		s = append(s, strconv.Itoa(d))
	}
	return strings.Join(s, ",")
}

func parseDims(s string) ([]int, error) {
	dims := make([]int, 0)
	if s == "" {
		return dims, nil
	}
	for _, f := range strings.Split(s, ",") {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%q", s))
		}
		dims = append(dims, d)
	}
	return dims, nil
}
