// Package sqlite is the local result cache. Despite the name it also
// accepts a postgres DSN; queries are rebound per driver.
package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/logoove/sqlite"
	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	db2 "github.com/zan8in/moongazing/pkg/db"
	randutil "github.com/zan8in/pins/rand"
)

// adjust to the write load
var workerCount = 4

type Store struct {
	dbx    *sqlx.DB
	driver string

	insertChannel chan db2.ResultData
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

// SqliteDSN opens path with WAL and a busy timeout.
func SqliteDSN(path string) string {
	if path == "" {
		path = db2.DbName()
	}
	return "file:" + path + "?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000"
}

// Open connects to driver ("sqlite3" or "postgres"), creates the schema
// and starts the insert workers. A blank sqlite dsn uses the default
// file; a plain path is wrapped by SqliteDSN.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", db2.DriverSqlite, "sqlite":
		driver = db2.DriverSqlite
		if !strings.HasPrefix(dsn, "file:") {
			dsn = SqliteDSN(dsn)
		}
	case db2.DriverPostgres, "postgresql":
		driver = db2.DriverPostgres
	default:
		return nil, errors.Errorf("unsupported cache driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", driver)
	}
	if driver == db2.DriverSqlite {
		// one connection is the safe choice under WAL
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec(db2.Schema); err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, fmt.Errorf("error creating table: %v", err)
	}

	s := &Store{dbx: db, driver: driver, insertChannel: make(chan db2.ResultData, 1024)}
	s.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go s.saveToDatabaseX()
	}
	if err := s.dbx.Ping(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Driver() string { return s.driver }

// SetResultX queues a row for the background writers.
func (s *Store) SetResultX(row db2.ResultData) {
	s.insertChannel <- row
}

func (s *Store) saveToDatabaseX() {
	defer s.wg.Done()
	for row := range s.insertChannel {
		if _, err := s.Upsert(context.Background(), row); err != nil {
			gologger.Error().Msgf("Error inserting result into database: %v\n", err)
		}
	}
}

// Close drains the insert queue and closes the connection.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.insertChannel)
		s.wg.Wait()
		s.dbx.Close()
	})
}

// retry repeats fn while sqlite reports a locked database, at most 5 times.
func retry(fn func() error) error {
	c := 0
	for {
		err := fn()
		if err != nil && strings.Contains(err.Error(), "database is locked") && c < 5 {
			c++
			randutil.RandSleep(1000)
			continue
		}
		return err
	}
}

// Upsert writes row keyed by id and reports whether it was new, changed
// (different fingerprint) or unchanged. created is kept across updates.
func (s *Store) Upsert(ctx context.Context, row db2.ResultData) (db2.State, error) {
	if s == nil || s.dbx == nil {
		return db2.Unchanged, fmt.Errorf("cache not initialized")
	}
	if row.Fingerprint == "" && row.Record != nil {
		row.Fingerprint = db2.Fingerprint(row.Record)
	}

	var state db2.State
	err := retry(func() error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var prev []string
		q := s.dbx.Rebind("SELECT fingerprint FROM " + db2.TableName + " WHERE id = ?")
		if err := s.dbx.SelectContext(ctx, &prev, q, row.ID); err != nil {
			return err
		}
		switch {
		case len(prev) == 0:
			state = db2.Inserted
		case prev[0] != row.Fingerprint:
			state = db2.Changed
		default:
			state = db2.Unchanged
			return nil
		}

		now := time.Now().Format("2006-01-02 15:04:05")
		upsertSQL := s.dbx.Rebind("INSERT INTO " + db2.TableName +
			"(id, taskid, kind, severity, title, data, fingerprint, created, updated) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?) " +
			"ON CONFLICT(id) DO UPDATE SET taskid = excluded.taskid, kind = excluded.kind, severity = excluded.severity, " +
			"title = excluded.title, data = excluded.data, fingerprint = excluded.fingerprint, updated = excluded.updated")
		_, err := s.dbx.ExecContext(ctx, upsertSQL, row.ID, row.TaskID, row.Kind, row.Severity, row.Title, row.Data, row.Fingerprint, now, now)
		return err
	})
	if err != nil {
		return db2.Unchanged, err
	}
	return state, nil
}

// Filter narrows SelectPage and CountFiltered. Severity is a comma list;
// five or more values count as all.
type Filter struct {
	TaskID   string
	Kind     string
	Severity string
	Keyword  string
}

func (f Filter) where() (string, []any) {
	var where []string
	var args []any

	if f.TaskID != "" {
		where = append(where, "taskid = ?")
		args = append(args, f.TaskID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, "(title LIKE ? OR data LIKE ?)")
		args = append(args, "%"+kw+"%", "%"+kw+"%")
	}
	if sev := strings.TrimSpace(f.Severity); sev != "" {
		var holders []string
		var sevArgs []any
		for _, s := range strings.Split(sev, ",") {
			t := strings.ToLower(strings.TrimSpace(s))
			if t == "" {
				continue
			}
			holders = append(holders, "?")
			sevArgs = append(sevArgs, t)
		}
		if len(holders) > 0 && len(holders) < 5 {
			where = append(where, "severity IN ("+strings.Join(holders, ",")+")")
			args = append(args, sevArgs...)
		}
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// SelectPage lists cached rows newest first. pageSize is clamped to 500.
func (s *Store) SelectPage(ctx context.Context, f Filter, page, pageSize int) ([]db2.ResultData, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}
	offset := (page - 1) * pageSize

	where, args := f.where()
	query := "SELECT * FROM " + db2.TableName + where +
		" ORDER BY updated DESC, id ASC LIMIT " + strconv.Itoa(pageSize) + " OFFSET " + strconv.Itoa(offset)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var data []db2.ResultData
	if err := s.dbx.SelectContext(ctx, &data, s.dbx.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range data {
		_ = data[i].Decode()
	}
	return data, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (db2.ResultData, error) {
	var row db2.ResultData
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := s.dbx.Rebind("SELECT * FROM " + db2.TableName + " WHERE id = ?")
	if err := s.dbx.GetContext(ctx, &row, q, id); err != nil {
		return row, err
	}
	err := row.Decode()
	return row, err
}

func (s *Store) CountFiltered(ctx context.Context, f Filter) (int64, error) {
	where, args := f.where()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int64
	if err := s.dbx.GetContext(ctx, &count, s.dbx.Rebind("SELECT COUNT(*) FROM "+db2.TableName+where), args...); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteTask drops every cached row of a task.
func (s *Store) DeleteTask(ctx context.Context, taskID string) (int64, error) {
	res, err := s.dbx.ExecContext(ctx, s.dbx.Rebind("DELETE FROM "+db2.TableName+" WHERE taskid = ?"), taskID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
