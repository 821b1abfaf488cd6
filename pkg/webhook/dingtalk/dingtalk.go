package dingtalk

import (
	"errors"
	"fmt"
	"strings"

	ding "github.com/blinkbean/dingtalk"
	"github.com/zan8in/moongazing/pkg/webhook"
	timeutil "github.com/zan8in/pins/time"
)

type Dingtalk struct {
	Ding *ding.DingTalk
	// Tokens: each robot is rate limited, so several can be configured and
	// one is picked at random per message.
	Tokens    []string
	AtMobiles []string
	AtAll     bool
	// Range is the alerted severity band, default high,critical
	Range string

	// send is replaced in tests
	send func(title string, content []string) error
}

func New(tokens, atMobiles []string, rang string, atAll bool) (*Dingtalk, error) {
	tokens = webhook.NormalizeStringSlice(tokens)
	if len(tokens) == 0 {
		return nil, errors.New("tokens can not be empty")
	}
	d := &Dingtalk{
		Ding:      ding.InitDingTalk(tokens, "."),
		Tokens:    tokens,
		AtMobiles: webhook.NormalizeStringSlice(atMobiles),
		AtAll:     atAll,
		Range:     rang,
	}
	d.send = d.SendMarkDownMessageBySlice
	return d, nil
}

// Send pushes a when its severity is in range.
func (d *Dingtalk) Send(a webhook.Alert) error {
	if !a.InRange(d.Range) {
		return nil
	}
	return d.send(a.Name, d.MarkdownText(a))
}

func (d *Dingtalk) SendMarkDownMessageBySlice(title string, mkcontent []string) error {
	if mkcontent == nil {
		return nil
	}
	if d.AtAll {
		return d.Ding.SendMarkDownMessageBySlice(title, mkcontent, ding.WithAtAll())
	}
	if len(d.AtMobiles) > 0 {
		return d.Ding.SendMarkDownMessageBySlice(title, mkcontent, ding.WithAtMobiles(d.AtMobiles))
	}
	return d.Ding.SendMarkDownMessageBySlice(title, mkcontent)
}

func (d *Dingtalk) MarkdownText(a webhook.Alert) []string {
	lines := []string{
		fmt.Sprintf("##### %s %s", a.Name, d.Severity(a.Severity)),
		"---",
		fmt.Sprintf("%s<br/>", a.Target),
	}
	if a.Detail != "" {
		lines = append(lines, fmt.Sprintf("%s<br/>", a.Detail))
	}
	return append(lines, fmt.Sprintf("<font color=GRAY>%s\t%s\tfr.moongazing</font>", timeutil.Format(timeutil.FormatShortDateTime), a.Kind))
}

func (d *Dingtalk) Severity(s string) string {
	var r string
	switch strings.TrimSpace(s) {
	case "high":
		r = "RED"
	case "critical":
		r = "#b454ff"
	case "medium":
		r = "#ff9900"
	default:
		r = "blue"
	}
	return fmt.Sprintf("<font color='%s'><b>%s</b></font>", r, s)
}
