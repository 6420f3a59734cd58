package main

import (
	"fmt"
	"os"

	"github.com/esimov/sdfatlas/utils"
)

const HelpBanner = `
┌─┐┌┬┐┌─┐┌─┐┌┬┐┬  ┌─┐┌─┐
└─┐ │││├┤ ├─┤ │ │  ├─┤└─┐
└─┘─┴┘└  ┴ ┴ ┴ ┴─┘┴ ┴└─┘

Signed distance field icon atlas generator.
    Version: %s

`

// Version indicates the current build version.
var Version string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText("Error: "+err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}
}
