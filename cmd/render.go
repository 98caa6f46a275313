package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/clipnerf/torch-ngp/field"
	"github.com/clipnerf/torch-ngp/render"
	"github.com/clipnerf/torch-ngp/types"
)

// RenderFrame renders a single frame of the demo field and writes it as PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	width := ctx.Int("width")
	height := ctx.Int("height")

	r, err := newRenderer(ctx)
	if err != nil {
		return err
	}

	fovRad := ctx.Float64("fov") * math.Pi / 180
	focal := float32(0.5 * float64(height) / math.Tan(fovRad/2))
	intr := render.Intrinsics{
		Fx: focal,
		Fy: focal,
		Cx: float32(width) / 2,
		Cy: float32(height) / 2,
	}

	pose := types.Ident4()
	pose.Set(2, 3, float32(-ctx.Float64("distance")))

	params := render.RenderParams{
		Staged:      ctx.Bool("staged"),
		MaxRayBatch: ctx.Int("max-ray-batch"),
		Perturb:     ctx.Bool("perturb"),
		NumSteps:    ctx.Int("steps"),
	}

	start := time.Now()
	res, _, _, err := r.RenderFromPose(pose, intr, width, height, params)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := ctx.String("out")
	if err := writePNG(out, res.Image, width, height); err != nil {
		return err
	}
	logger.Infof("wrote %s", out)

	displayRenderStats(width*height, params.NumSteps, elapsed, r.Stats())
	return nil
}

// newRenderer builds a renderer over the analytic demo field, optionally
// restoring persisted occupancy state.
func newRenderer(ctx *cli.Context) (*render.Renderer, error) {
	r, err := render.New(field.NewBlob(), render.Options{
		Bound:        float32(ctx.Float64("bound")),
		DensityScale: float32(ctx.Float64("density-scale")),
	})
	if err != nil {
		return nil, err
	}

	if state := ctx.String("state"); state != "" {
		f, err := os.Open(state)
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		defer f.Close()
		if err := r.LoadState(f); err != nil {
			return nil, err
		}
		logger.Infof("restored occupancy state from %s", state)
	}
	return r, nil
}

func writePNG(path string, pixels []types.Vec3, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, p := range pixels {
		img.SetNRGBA(i%width, i/width, color.NRGBA{
			R: clampByte(p[0]),
			G: clampByte(p[1]),
			B: clampByte(p[2]),
			A: 255,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

func displayRenderStats(rays, steps int, elapsed time.Duration, gs render.GridStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rays", "Steps/ray", "Render time", "Cascades", "Mean density"})
	table.Append([]string{
		fmt.Sprintf("%d", rays),
		fmt.Sprintf("%d", steps),
		elapsed.String(),
		fmt.Sprintf("%d", gs.Cascade),
		fmt.Sprintf("%.5f", gs.MeanDensity),
	})
	table.Render()
	fmt.Print(buf.String())
}
