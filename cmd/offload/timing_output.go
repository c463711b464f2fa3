package main

import (
	"fmt"
	"io"
	"time"

	"offload/internal/observ"
	"offload/internal/pipeline"
)

// printTimings prints per-file stage durations, then the phase summary of
// timer when there is one.
func printTimings(out io.Writer, res pipeline.Result, timer *observ.Timer) {
	if out == nil {
		return
	}
	for i := range res.Files {
		fr := &res.Files[i]
		t := fr.Timings
		fmt.Fprintf(out, "%s:", fr.Path)
		for _, stage := range []pipeline.Stage{pipeline.StageParse, pipeline.StagePasses, pipeline.StageEmit} {
			if t.Has(stage) {
				fmt.Fprintf(out, " %s %.1f ms", stage, toMillis(t.Duration(stage)))
			}
		}
		fmt.Fprintln(out)
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
