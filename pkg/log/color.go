package log

import (
	"os"
	"runtime"

	"github.com/gookit/color"
	"github.com/zan8in/moongazing/pkg/utils"
)

var (
	EnableColor = true
)

type Color struct {
	Info     func(a ...any) string
	Low      func(a ...any) string
	Midium   func(a ...any) string
	High     func(a ...any) string
	Critical func(a ...any) string
	Unkown   func(a ...any) string
	Kind     func(a ...any) string
	Time     func(a ...any) string
	Title    func(a ...any) string
	Banner   func(a ...any) string
	Bold     func(a ...any) string
	Red      func(a ...any) string
	Green    func(a ...any) string
	Tag      func(a ...any) string
}

var LogColor *Color

func init() {
	detectTerminal()

	if LogColor == nil {
		LogColor = NewColor()
	}
}

func detectTerminal() {
	if runtime.GOOS == "windows" {
		_, wt := os.LookupEnv("WT_SESSION")
		_, ansi := os.LookupEnv("ANSICON")
		EnableColor = wt || ansi
	} else {
		fi, err := os.Stdout.Stat()
		EnableColor = err == nil && (fi.Mode()&os.ModeCharDevice) != 0
	}
	color.Enable = EnableColor
}

func NewColor() *Color {
	return &Color{
		Info:     color.HiCyan.Render,
		Low:      color.FgCyan.Render,
		Midium:   color.FgYellow.Render,
		High:     color.FgLightRed.Render,
		Critical: color.RGB(180, 84, 255).Sprint,
		Unkown:   color.BgDefault.Render,
		Kind:     color.FgLightGreen.Render,
		Time:     color.Gray.Render,
		Title:    color.FgLightBlue.Render,
		Banner:   color.FgLightGreen.Render,
		Bold:     color.Bold.Render,
		Red:      color.FgLightRed.Render,
		Green:    color.FgLightGreen.Render,
		Tag:      color.Yellow.Render,
	}
}

// Severity colors text by a severity name. Unknown names use the kind color.
func (c *Color) Severity(level string, text string) string {
	switch utils.ParseSeverity(level) {
	case utils.INFO:
		return c.Info(text)
	case utils.LOW:
		return c.Low(text)
	case utils.MEDIUM:
		return c.Midium(text)
	case utils.HIGH:
		return c.High(text)
	case utils.CRITICAL:
		return c.Critical(text)
	case utils.UNKOWN:
		return c.Unkown(text)
	default:
		return c.Kind(text)
	}
}
