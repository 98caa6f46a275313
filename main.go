package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/clipnerf/torch-ngp/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "torch-ngp"
	app.Usage = "render images from a volumetric radiance field"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	rendererFlags := []cli.Flag{
		cli.Float64Flag{
			Name:  "bound",
			Value: 1.0,
			Usage: "half-extent of the sampled volume",
		},
		cli.Float64Flag{
			Name:  "density-scale",
			Value: 1.0,
			Usage: "scale applied to queried densities",
		},
		cli.StringFlag{
			Name:  "state",
			Usage: "occupancy state snapshot to restore",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render the demo field",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame of the analytic demo field to a PNG file.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.Float64Flag{
							Name:  "fov",
							Value: 60,
							Usage: "vertical field of view in degrees",
						},
						cli.Float64Flag{
							Name:  "distance",
							Value: 2.5,
							Usage: "camera distance from the volume center",
						},
						cli.IntFlag{
							Name:  "steps",
							Value: 256,
							Usage: "samples per ray",
						},
						cli.BoolFlag{
							Name:  "staged",
							Usage: "render in memory-bounded ray chunks",
						},
						cli.IntFlag{
							Name:  "max-ray-batch",
							Value: 4096,
							Usage: "rays per chunk when staging",
						},
						cli.BoolFlag{
							Name:  "perturb",
							Usage: "jitter sample depths",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, rendererFlags...),
					Action: cmd.RenderFrame,
				},
			},
		},
		{
			Name:  "grid",
			Usage: "occupancy grid maintenance",
			Subcommands: []cli.Command{
				{
					Name:        "stats",
					Usage:       "refresh the occupancy grid and print a summary",
					Description: `Run occupancy refreshes against the demo field and display grid statistics.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "refresh",
							Value: 1,
							Usage: "number of refresh iterations to run",
						},
						cli.Float64Flag{
							Name:  "decay",
							Value: 0.95,
							Usage: "EMA decay applied to retained cells",
						},
						cli.StringFlag{
							Name:  "save-state",
							Usage: "write the resulting occupancy state to this file",
						},
					}, rendererFlags...),
					Action: cmd.GridStats,
				},
			},
		},
	}

	app.Run(os.Args)
}
