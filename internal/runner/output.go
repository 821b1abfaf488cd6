package runner

import (
	"fmt"
	"strings"

	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/db"
	"github.com/zan8in/moongazing/pkg/log"
	"github.com/zan8in/moongazing/pkg/result"
)

// recordLine renders one normalized result for the terminal.
func recordLine(kind result.Kind, rec result.Record) string {
	env := result.Envelope(rec)
	if kind == "" {
		kind = env.Type
	}
	line := fmt.Sprintf("%s %s %s", log.LogColor.Time(env.ID), log.LogColor.Kind("["+string(kind)+"]"), log.LogColor.Title(db.Title(rec)))
	if sev := result.String(rec["severity"]); sev != "" {
		line += " " + log.LogColor.Severity(sev, strings.ToUpper(sev))
	}
	if code := result.Int64(rec["statusCode"]); code > 0 {
		line += fmt.Sprintf(" [%d]", code)
	}
	if len(env.Tags) > 0 {
		line += " " + log.LogColor.Tag(strings.Join(env.Tags, ","))
	}
	return line
}

func printRecords(kind result.Kind, recs []result.Record) {
	for _, rec := range recs {
		gologger.Print().Msg(recordLine(kind, rec))
	}
}
