package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
	"github.com/oluwabajio/AudioTool/internal/pipeline"
)

// RunCmd applies a pipeline file and saves the result.
type RunCmd struct {
	Source   string `arg:"" type:"existingfile" help:"Audio file to edit"`
	Dest     string `arg:"" type:"path" help:"Where to write the result"`
	Pipeline string `short:"p" type:"existingfile" required:"" help:"TOML pipeline file"`
	Publish  string `help:"Also publish the result to S3 under this key"`
}

// Run executes the command.
func (c *RunCmd) Run(app *App) error {
	p, err := pipeline.Load(c.Pipeline)
	if err != nil {
		return err
	}
	if err := p.Validate(pipeline.NewValidator()); err != nil {
		return err
	}

	tool := app.deps.NewTool()
	if _, err := tool.Open(app.ctx, c.Source); err != nil {
		return err
	}
	defer releaseQuietly(tool)

	rows := [][]string{{"0", "open", "", fileSize(mustWorkingPath(tool))}}
	last := time.Now()
	err = p.Run(app.ctx, tool, func(i int, step pipeline.Step, path string) {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(step.Op),
			time.Since(last).Round(time.Millisecond).String(),
			fileSize(path),
		})
		last = time.Now()
	})
	if err != nil {
		return err
	}

	if err := tool.SaveTo(app.ctx, c.Dest); err != nil {
		return err
	}
	rows = append(rows, []string{"", "save", "", c.Dest})

	if c.Publish != "" {
		url, err := tool.Publish(app.ctx, c.Publish)
		if err != nil {
			return err
		}
		rows = append(rows, []string{"", "publish", "", url})
	}

	fmt.Fprintln(app.out, renderTable(app.out,
		[]string{"#", "Step", "Took", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
	))
	return nil
}

// DurationCmd prints the duration of an audio file.
type DurationCmd struct {
	Source string `arg:"" type:"existingfile" help:"Audio file to probe"`
	Unit   string `short:"u" default:"millis" enum:"millis,seconds,minutes" help:"Unit to report (${enum})"`
}

// Run executes the command.
func (c *DurationCmd) Run(app *App) error {
	unit, err := audiotool.ParseDurationUnit(c.Unit)
	if err != nil {
		return err
	}

	tool := app.deps.NewTool()
	if _, err := tool.Open(app.ctx, c.Source); err != nil {
		return err
	}
	defer releaseQuietly(tool)

	n, err := tool.Duration(app.ctx, unit)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, n)
	return nil
}

// SweepCmd deletes every working file left in the working directory.
type SweepCmd struct{}

// Run executes the command.
func (c *SweepCmd) Run(app *App) error {
	removed, err := app.deps.NewTool().ReleaseAll(app.ctx)
	fmt.Fprintf(app.out, "removed %s from %s\n",
		humanize.Comma(int64(removed))+" "+plural(removed, "file", "files"),
		app.deps.Storage.WorkDir(),
	)
	return err
}

func releaseQuietly(tool *audiotool.Tool) {
	if tool.State() == audiotool.StateReady {
		_ = tool.ReleaseCurrent(context.Background())
	}
}

func mustWorkingPath(tool *audiotool.Tool) string {
	path, _ := tool.WorkingPath()
	return path
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return humanize.Bytes(uint64(info.Size())) // #nosec G115 - file sizes are non-negative
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
