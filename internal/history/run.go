package history

import (
	"time"

	"github.com/jfmyers9/collagefm/internal/collage"
)

// NewRun describes the outcome of one Generate call. c may be nil when
// err is set; output is empty when the collage was not written to disk.
func NewRun(req collage.Request, c *collage.Collage, err error, output string, elapsed time.Duration) Run {
	run := Run{
		Username:  req.Username,
		Period:    req.Period,
		Dimension: req.Dimension,
		ImageSize: req.ImageSize,
		Result:    collage.Outcome(err),
		Output:    output,
		Duration:  elapsed,
		Timestamp: time.Now(),
	}
	if err != nil {
		run.Message = err.Error()
		run.Output = ""
	}
	if c != nil {
		run.Images = c.Count
		run.Width = c.Width()
		run.Height = c.Height()
	}
	return run
}
