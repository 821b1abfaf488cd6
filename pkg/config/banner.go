package config

import (
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/log"
)

const Version = "1.0.0"

func ShowBanner() {
	gologger.Print().Msgf("\n|\t%s\t>\t%s\n\n", log.LogColor.Banner("M O O N G A Z I N G"), Version)
}

// ShowConsole prints which console the CLI talks to and whether a session
// token is present.
func ShowConsole(c *Config, loggedIn bool) {
	session := log.LogColor.Red("no session")
	if loggedIn {
		session = log.LogColor.Green("logged in")
	}
	gologger.Print().Msgf("Using console %s (%s)", c.API.BaseURL, session)
}
