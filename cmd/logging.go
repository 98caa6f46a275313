package cmd

import (
	"github.com/clipnerf/torch-ngp/log"
	"github.com/urfave/cli"
)

var logger = log.New("torch-ngp")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
