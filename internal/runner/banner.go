package runner

import (
	"fmt"

	"github.com/zan8in/moongazing/pkg/config"
	"github.com/zan8in/moongazing/pkg/log"
)

func ShowUsage() string {
	return "\nUSAGE:\n   moongazing -m login -u admin -p password\n   moongazing -m results -task <id> -type subdomain\n   moongazing -m export -task <id> -format csv -o subdomains.csv\n   moongazing -m sync -task <id1>,<id2> -S high,critical\n   moongazing -m serve -listen 127.0.0.1:16868\n"
}

func ShowVersion() {
	fmt.Println("NAME:\n   " + log.LogColor.Banner("moongazing") + " - v" + config.Version + "\n")
}
