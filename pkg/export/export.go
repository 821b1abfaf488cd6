// Package export writes normalized scan results to JSON or CSV files and
// optionally ships them to object storage.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/zan8in/fileutil"
	"github.com/zan8in/moongazing/pkg/result"
	"github.com/zan8in/moongazing/pkg/utils"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	}
	return "", errors.Errorf("unknown export format %q", s)
}

// Options controls one export.
type Options struct {
	Format Format
	// GB18030 re-encodes CSV output for spreadsheet tools on Chinese
	// locales. JSON is always UTF-8.
	GB18030 bool
}

// leading columns, in this order, before the rest sorted by name
var leadColumns = []string{"id", "taskId", "type"}

// Columns is the CSV header for recs. data is left out since every data
// key is already promoted to the top level.
func Columns(recs []result.Record) []string {
	seen := map[string]bool{"data": true}
	var rest []string
	for _, r := range recs {
		for k := range r {
			if seen[k] || utils.StringSliceContains(leadColumns, k) {
				continue
			}
			seen[k] = true
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(append([]string{}, leadColumns...), rest...)
}

// Cell renders one value for CSV. Lists of scalars are joined with "|",
// other structures are JSON encoded.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprint(t)
	case []any:
		if ss := result.StringSlice(t); len(ss) == len(t) {
			return strings.Join(ss, "|")
		}
	case []string:
		return strings.Join(t, "|")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Write encodes recs to w.
func Write(w io.Writer, recs []result.Record, opt Options) error {
	if recs == nil {
		recs = []result.Record{}
	}
	switch opt.Format {
	case CSV:
		if opt.GB18030 {
			tw := transform.NewWriter(w, simplifiedchinese.GB18030.NewEncoder())
			defer tw.Close()
			w = tw
		}
		cw := csv.NewWriter(w)
		cols := Columns(recs)
		if err := cw.Write(cols); err != nil {
			return err
		}
		row := make([]string, len(cols))
		for _, r := range recs {
			for i, c := range cols {
				row[i] = Cell(r[c])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	return errors.Errorf("unknown export format %q", opt.Format)
}

// DefaultFilename names an export of a task's results.
func DefaultFilename(taskID string, kind result.Kind, f Format) string {
	name := "task_" + taskID
	if kind != "" {
		name += "_" + string(kind)
	}
	return utils.SanitizeFilename(name+"_"+utils.GetNowDateTimeReportName()) + "." + string(f)
}

// WriteFile writes recs to path, refusing to overwrite an existing file.
func WriteFile(path string, recs []result.Record, opt Options) error {
	if fileutil.FileExists(path) {
		return errors.Errorf("output file %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	if err := Write(f, recs, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
