package wecom

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	wxworkbot "github.com/vimsucks/wxwork-bot-go"
	"github.com/zan8in/moongazing/pkg/webhook"
	timeutil "github.com/zan8in/pins/time"
)

type Wecom struct {
	Tokens    []string
	Range     string
	AtMobiles []string
	AtAll     bool
	Markdown  bool

	// send is replaced in tests
	send func(token string, msg any) error
}

func New(tokens, atMobiles []string, rang string, atAll bool, markdown bool) (*Wecom, error) {
	tokens = webhook.NormalizeStringSlice(tokens)
	if len(tokens) == 0 {
		return nil, errors.New("tokens can not be empty")
	}
	return &Wecom{
		Tokens:    tokens,
		AtMobiles: webhook.NormalizeStringSlice(atMobiles),
		AtAll:     atAll,
		Range:     rang,
		Markdown:  markdown,
		send: func(token string, msg any) error {
			return wxworkbot.New(token).Send(msg)
		},
	}, nil
}

// Send pushes a when its severity is in range; other alerts are dropped
// without error.
func (w *Wecom) Send(a webhook.Alert) error {
	if !a.InRange(w.Range) {
		return nil
	}
	mentionedMobiles := append([]string{}, w.AtMobiles...)
	if !w.Markdown {
		if w.AtAll {
			mentionedMobiles = append(mentionedMobiles, "@all")
		}
		return w.sendMessage(wxworkbot.Text{
			Content:             strings.Join(w.makeText(a), "\n"),
			MentionedMobileList: mentionedMobiles,
		})
	}
	content := w.markdownText(a)
	if w.AtAll {
		content = append(content, "<@all>")
	}
	return w.sendMessage(wxworkbot.Markdown{Content: strings.Join(content, "\n")})
}

func (w *Wecom) sendMessage(msg any) error {
	idx := 0
	if len(w.Tokens) > 1 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(w.Tokens))))
		if err == nil {
			idx = int(n.Int64())
		}
	}
	return w.send(w.Tokens[idx], msg)
}

func (w *Wecom) markdownText(a webhook.Alert) []string {
	lines := []string{
		fmt.Sprintf("##### %s %s", a.Name, w.severity(a.Severity)),
		"---",
		a.Target,
	}
	if a.Detail != "" {
		lines = append(lines, fmt.Sprintf("> %s", a.Detail))
	}
	return append(lines, fmt.Sprintf("<font color=GRAY>%s\t%s\tfr.moongazing</font>", timeutil.Format(timeutil.FormatShortDateTime), a.Kind))
}

func (w *Wecom) makeText(a webhook.Alert) []string {
	return []string{
		fmt.Sprintf("Time: %s", timeutil.Format(timeutil.FormatShortDateTime)),
		fmt.Sprintf("Vuln Name: %s\nVuln Level: %s", a.Name, a.Severity),
		fmt.Sprintf("Target: %s", a.Target),
	}
}

func (w *Wecom) severity(s string) string {
	r := "warning"
	if strings.TrimSpace(s) == "info" {
		r = "info"
	}
	return fmt.Sprintf("<font color='%s'>%s</font>", r, s)
}
