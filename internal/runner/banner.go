package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsweep/pkg/version"
)

var banner = `
             __
  ____  ___  / /________      _____  ___  ____
 / __ \/ _ \/ __/ ___/ | /| / / _ \/ _ \/ __ \
/ / / /  __/ /_(__  )| |/ |/ /  __/  __/ /_/ /
/_/ /_/\___/\__/____/ |__/|__/\___/\___/ .___/
                                      /_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\t%s\n\n", banner, version.GetVersion())
}
