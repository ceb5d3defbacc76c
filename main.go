// Package main is the entry point for the cachedplayer application.
package main

import (
	"github.com/cachedplayer/cachedplayer/cmd"
	"github.com/cachedplayer/cachedplayer/config"
	"github.com/cachedplayer/cachedplayer/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
