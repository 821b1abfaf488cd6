package config

import (
	"github.com/zan8in/gologger"
	"github.com/zan8in/goupdate"
	"github.com/zan8in/goupdate/stores/gitee"
)

// UpdateEngine replaces the running binary with the latest release.
func UpdateEngine() error {
	owner := "zanbin"
	repo := "moongazing"

	result, err := gitee.Update(owner, repo, Version)
	if err != nil {
		return err
	}
	if result.Status == 2 {
		gologger.Info().Msgf("%s %s", repo, goupdate.LatestVersionTips)
		return nil
	}
	gologger.Info().Msgf("Successfully updated to %s %s\n", repo, result.LatestVersion)
	return nil
}
