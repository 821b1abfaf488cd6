package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaolacci/murmur3"
	"github.com/zan8in/moongazing/pkg/result"
)

// ResultData is one cached scan result row.
type ResultData struct {
	ID          string `db:"id" json:"id"`
	TaskID      string `db:"taskid" json:"taskId"`
	Kind        string `db:"kind" json:"type"`
	Severity    string `db:"severity" json:"severity"`
	Title       string `db:"title" json:"title"`
	Data        string `db:"data" json:"-"`
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Created     string `db:"created" json:"created"`
	Updated     string `db:"updated" json:"updated"`

	Record result.Record `db:"-" json:"record,omitempty"`
}

// State is what an upsert did to a row.
type State int

const (
	Unchanged State = iota
	Inserted
	Changed
)

func (s State) String() string {
	switch s {
	case Inserted:
		return "new"
	case Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

const (
	DriverSqlite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	DBName    = "moongazing"
	TableName = "result"

	// Schema is valid for both sqlite and postgres.
	Schema = `CREATE TABLE IF NOT EXISTS result (
		id TEXT NOT NULL PRIMARY KEY,
		taskid TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT '',
		severity TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL DEFAULT '',
		created TEXT NOT NULL DEFAULT '',
		updated TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_taskid ON result (taskid);
	CREATE INDEX IF NOT EXISTS idx_kind ON result (kind);
	CREATE INDEX IF NOT EXISTS idx_severity ON result (severity);`
)

// DbName is the default sqlite file under ~/.config/moongazing.
func DbName() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DBName + ".db"
	}
	path := filepath.Join(homeDir, ".config", "moongazing")
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return DBName + ".db"
	}
	return filepath.Join(path, DBName+".db")
}

// Fingerprint hashes the canonical JSON of a record. encoding/json sorts
// map keys, so equal records hash equally whatever their key order.
func Fingerprint(rec result.Record) string {
	b, err := json.Marshal(rec)
	if err != nil {
		b = []byte(fmt.Sprint(rec))
	}
	return fmt.Sprintf("%016x", murmur3.Sum64(b))
}

// titleKeys are tried in order to label a cached row.
var titleKeys = []string{"name", "subdomain", "url", "domain", "title", "ip", "value", "target"}

// FromRecord builds a row from a normalized record. kind is the type the
// record was listed under.
func FromRecord(kind result.Kind, rec result.Record) (ResultData, error) {
	env := result.Envelope(rec)
	if env.ID == "" {
		return ResultData{}, fmt.Errorf("result without id")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return ResultData{}, err
	}
	row := ResultData{
		ID:          env.ID,
		TaskID:      env.TaskID,
		Kind:        string(kind),
		Severity:    strings.ToLower(result.String(rec["severity"])),
		Data:        string(b),
		Fingerprint: Fingerprint(rec),
		Record:      rec,
	}
	row.Title = Title(rec)
	return row, nil
}

// Title labels rec with its first non-empty title key.
func Title(rec result.Record) string {
	for _, k := range titleKeys {
		if s := result.String(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

// Decode fills Record from Data.
func (r *ResultData) Decode() error {
	if r.Data == "" {
		r.Record = result.Record{}
		return nil
	}
	return json.Unmarshal([]byte(r.Data), &r.Record)
}
