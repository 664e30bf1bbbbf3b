package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

const maxRecentRuns = 5

const (
	labelUsername  = "Username"
	labelPeriod    = "Period"
	labelDimension = "Dimension"
	labelImageSize = "Image size"
)

// Generator runs the collage pipeline off the caller's goroutine.
// *collage.Generator implements it.
type Generator interface {
	Start(ctx context.Context, req collage.Request) <-chan collage.Result
}

// OptionsStore persists the last-used labels. *options.Store implements it.
type OptionsStore interface {
	Load() (collage.Request, error)
	Save(req collage.Request) error
}

// Recorder stores run outcomes. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Config holds TUI configuration options
type Config struct {
	Output string          // Where collages are written
	Tables *collage.Tables // Dropdown contents
}

// RecentRun stores the outcome of a recent run
type RecentRun struct {
	Username  string
	Dimension string
	Outcome   string
	Elapsed   time.Duration
}

// App is the TUI application for generating collages
type App struct {
	app    *tview.Application
	form   *tview.Form
	status *tview.TextView
	recent *tview.TextView

	config    Config
	generator Generator
	store     OptionsStore
	recorder  Recorder
	logger    zerolog.Logger

	// Guards the run state below
	mu        sync.Mutex
	running   bool
	cancelRun context.CancelFunc

	// Ring buffer of recent runs (guarded by mu)
	recentBuf   [maxRecentRuns]RecentRun
	recentCount int

	// Context cancel function
	cancelFunc context.CancelFunc
}

// New creates the TUI. The form starts from the persisted options; recorder
// may be nil.
func New(cfg Config, generator Generator, store OptionsStore, recorder Recorder, logger zerolog.Logger) *App {
	if cfg.Tables == nil {
		cfg.Tables = collage.DefaultTables()
	}

	a := &App{
		app:       tview.NewApplication(),
		config:    cfg,
		generator: generator,
		store:     store,
		recorder:  recorder,
		logger:    logger.With().Str("component", "tui").Logger(),
	}

	initial, err := store.Load()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to load options, using defaults")
	}
	a.setupUI(initial)
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI(initial collage.Request) {
	tables := a.config.Tables

	a.form = tview.NewForm().
		AddInputField(labelUsername, initial.Username, 30, nil, nil).
		AddDropDown(labelPeriod, tables.Period.Labels(), indexOf(tables.Period, initial.Period), nil).
		AddDropDown(labelDimension, tables.Dimension.Labels(), indexOf(tables.Dimension, initial.Dimension), nil).
		AddDropDown(labelImageSize, tables.ImageSize.Labels(), indexOf(tables.ImageSize, initial.ImageSize), nil).
		AddButton("Generate", a.generate)
	a.form.SetBorder(true).
		SetTitle(" Collage ").
		SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetText("[gray]Enter a Last.fm username and press Generate[-]")
	a.status.SetBorder(true).
		SetTitle(" Status ").
		SetTitleAlign(tview.AlignLeft)

	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetText("[gray]No runs yet[-]")
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]tab:next field  enter:select  esc:cancel run  ctrl-c:quit[-]")

	bottomRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.status, 0, 2, false).
		AddItem(a.recent, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.form, 13, 1, true).
		AddItem(bottomRow, 0, 1, false).
		AddItem(footer, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true).SetFocus(a.form)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape {
		a.mu.Lock()
		cancel := a.cancelRun
		a.mu.Unlock()
		if cancel != nil {
			cancel()
			return nil
		}
	}
	return event
}

// Run starts the TUI and blocks until it exits
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)
	defer a.cancelFunc()

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// request reads the current form values
func (a *App) request() collage.Request {
	return collage.Request{
		Username:  strings.TrimSpace(a.form.GetFormItemByLabel(labelUsername).(*tview.InputField).GetText()),
		Period:    selected(a.form, labelPeriod),
		Dimension: selected(a.form, labelDimension),
		ImageSize: selected(a.form, labelImageSize),
	}
}

// generate is the Generate button handler. It runs on the UI goroutine, so
// the pipeline is started in the background and the result is applied with
// QueueUpdateDraw.
func (a *App) generate() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.running = true
	a.cancelRun = cancel
	a.mu.Unlock()

	req := a.request()
	a.status.SetText(fmt.Sprintf("[yellow]Generating collage for %s...[-]", tview.Escape(req.Username)))

	start := time.Now()
	results := a.generator.Start(ctx, req)

	go func() {
		defer cancel()
		res := <-results
		text := a.complete(req, res, time.Since(start))

		a.app.QueueUpdateDraw(func() {
			a.status.SetText(text)
			a.mu.Lock()
			recent := a.renderRecent()
			a.mu.Unlock()
			a.recent.SetText(recent)
		})
	}()
}

// complete handles a finished run: writes the collage, saves the options on
// success, records history and returns the status text to display.
func (a *App) complete(req collage.Request, res collage.Result, elapsed time.Duration) string {
	err := res.Err
	output := ""

	if err == nil {
		output = a.config.Output
		if werr := collage.WriteFile(output, res.Collage.Image); werr != nil {
			err = werr
		} else if serr := a.store.Save(req); serr != nil {
			a.logger.Warn().Err(serr).Msg("Failed to save options")
		}
	}

	if a.recorder != nil {
		run := history.NewRun(req, res.Collage, err, output, elapsed)
		if _, rerr := a.recorder.Record(context.Background(), run); rerr != nil {
			a.logger.Warn().Err(rerr).Msg("Failed to record run")
		}
	}

	a.mu.Lock()
	a.running = false
	a.cancelRun = nil
	a.addRecentRun(RecentRun{
		Username:  req.Username,
		Dimension: req.Dimension,
		Outcome:   collage.Outcome(err),
		Elapsed:   elapsed,
	})
	a.mu.Unlock()

	if err != nil {
		return fmt.Sprintf("[red]%s[-]", tview.Escape(collage.Present(err)))
	}
	return fmt.Sprintf("[green]✓ Saved %dx%d collage (%d albums) to %s in %s[-]",
		res.Collage.Width(), res.Collage.Height(), res.Collage.Count,
		tview.Escape(output), formatDuration(elapsed))
}

// addRecentRun adds a run to the ring buffer.
// Must be called with a.mu held.
func (a *App) addRecentRun(run RecentRun) {
	idx := a.recentCount % maxRecentRuns
	a.recentBuf[idx] = run
	a.recentCount++
}

// getRecentRuns returns recent runs in most-recent-first order.
// Must be called with a.mu held.
func (a *App) getRecentRuns() []RecentRun {
	n := a.recentCount
	if n > maxRecentRuns {
		n = maxRecentRuns
	}
	result := make([]RecentRun, n)
	for i := 0; i < n; i++ {
		idx := (a.recentCount - 1 - i) % maxRecentRuns
		result[i] = a.recentBuf[idx]
	}
	return result
}

// renderRecent builds the recent runs panel text.
// Must be called with a.mu held.
func (a *App) renderRecent() string {
	runs := a.getRecentRuns()
	if len(runs) == 0 {
		return "[gray]No runs yet[-]"
	}

	var sb strings.Builder
	for i, run := range runs {
		if i > 0 {
			sb.WriteString("\n")
		}
		if run.Outcome == "ok" {
			sb.WriteString("[green]✓[-] ")
		} else {
			sb.WriteString("[red]✗[-] ")
		}

		name := run.Username
		if len(name) > 16 {
			name = name[:13] + "..."
		}
		sb.WriteString(fmt.Sprintf("[white]%s[-] %s", tview.Escape(name), run.Dimension))
		if run.Outcome != "ok" {
			sb.WriteString(fmt.Sprintf(" [gray]%s[-]", run.Outcome))
		}
	}
	return sb.String()
}

// selected returns the current option of the dropdown with label
func selected(form *tview.Form, label string) string {
	dd, ok := form.GetFormItemByLabel(label).(*tview.DropDown)
	if !ok {
		return ""
	}
	_, option := dd.GetCurrentOption()
	return option
}

// indexOf returns the index of label in table, or 0 (the default)
func indexOf(table collage.Table, label string) int {
	for i, e := range table {
		if e.Label == label {
			return i
		}
	}
	return 0
}

// formatDuration formats a duration as seconds with one decimal
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
