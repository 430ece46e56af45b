package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/views/preview"
	"github.com/custodia-labs/htmltab/internal/adapters/driving/tui/views/tables"
	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// source is the location being browsed.
	source string

	// opts are passed to every extraction.
	opts domain.ExtractOptions

	// format is the export format used by the write key.
	format domain.OutputFormat

	// outDir is where exported tables are written.
	outDir string

	styles *styles.Styles
	keymap *keymap.KeyMap

	tablesView  *tables.View
	previewView *preview.View
	statusBar   *status.Bar

	// extraction is the last successful extraction.
	extraction *domain.Extraction

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	// loading is set while an extraction is running.
	loading bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// Option configures an App.
type Option func(*App)

// WithExtractOptions sets the options used for every extraction.
func WithExtractOptions(opts domain.ExtractOptions) Option {
	return func(a *App) {
		a.opts = opts
	}
}

// WithFormat sets the initial export format.
func WithFormat(format domain.OutputFormat) Option {
	return func(a *App) {
		if format.IsValid() {
			a.format = format
		}
	}
}

// WithOutputDir sets the directory exported tables are written to.
func WithOutputDir(dir string) Option {
	return func(a *App) {
		a.outDir = dir
	}
}

// NewApp creates a new TUI application browsing source.
func NewApp(ports *Ports, source string, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSource)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		source:      source,
		format:      domain.FormatCSV,
		outDir:      ".",
		styles:      s,
		keymap:      km,
		tablesView:  tables.NewView(s, km),
		previewView: preview.NewView(s, km),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewTables,
		loading:     true,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.statusBar.SetFormat(a.format)

	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It starts the first extraction.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("htmltab - "+a.source),
		a.load(),
	)
}

// load returns a command that extracts the source.
func (a *App) load() tea.Cmd {
	ctx, source, opts := a.ctx, a.source, a.opts
	return func() tea.Msg {
		e, err := a.ports.Extract.Extract(ctx, source, opts)
		return messages.ExtractionLoaded{Extraction: e, Err: err}
	}
}

// export returns a command that writes the table at index.
func (a *App) export(index int, format domain.OutputFormat) tea.Cmd {
	e, dir := a.extraction, a.outDir
	return func() tea.Msg {
		if e == nil || index < 0 || index >= len(e.Tables) {
			count := 0
			if e != nil {
				count = len(e.Tables)
			}
			return messages.TableExported{Err: &domain.IndexOutOfRangeError{Index: index, Count: count}}
		}
		path := filepath.Join(dir, e.Source.TableFileName(index, format))
		err := a.ports.Export.WriteFile(path, e.Tables[index], format)
		return messages.TableExported{Path: path, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ExtractionLoaded:
		a.loading = false
		a.handleLoaded(msg)
		return a, nil

	case messages.TableSelected:
		if a.extraction == nil || msg.Index < 0 || msg.Index >= len(a.extraction.Tables) {
			return a, nil
		}
		a.previewView.SetTable(msg.Index, a.extraction.Tables[msg.Index])
		a.setView(messages.ViewPreview)
		return a, nil

	case messages.ExportRequested:
		return a, a.export(msg.Index, msg.Format)

	case messages.TableExported:
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.statusBar.SetState(a.barState())
		a.statusBar.SetMessage("wrote " + msg.Path)
		return a, nil

	case messages.ViewChanged:
		a.setView(msg.View)
		return a, nil

	case messages.ErrorOccurred:
		a.fail(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewPreview:
		a.previewView, cmd = a.previewView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return a, cmd
}

// handleKey applies global bindings and forwards the rest to the active view.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}
	if a.loading {
		return a, nil
	}

	switch {
	case keymap.Matches(keyStr, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			a.setView(a.previousView)
		} else {
			a.previousView = a.currentView
			a.setView(messages.ViewHelp)
		}
		return a, nil

	case a.currentView == messages.ViewHelp:
		if keymap.Matches(keyStr, a.keymap.Back) {
			a.setView(a.previousView)
		}
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Reload):
		a.loading = true
		a.err = nil
		a.statusBar.SetMessage("")
		a.statusBar.SetState(status.StateLoading)
		return a, a.load()

	case keymap.Matches(keyStr, a.keymap.Format):
		a.format = a.nextFormat()
		a.statusBar.SetFormat(a.format)
		a.statusBar.SetMessage("")
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Export):
		if a.extraction == nil || len(a.extraction.Tables) == 0 {
			return a, nil
		}
		req := messages.ExportRequested{Index: a.activeIndex(), Format: a.format}
		return a, func() tea.Msg { return req }
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewPreview:
		a.previewView, cmd = a.previewView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// handleLoaded stores a finished extraction and shows its tables.
func (a *App) handleLoaded(msg messages.ExtractionLoaded) {
	if msg.Err != nil && !errors.Is(msg.Err, domain.ErrNoTables) {
		a.fail(msg.Err)
		return
	}

	a.err = nil
	a.extraction = msg.Extraction
	a.tablesView.SetExtraction(msg.Extraction)
	count := 0
	if msg.Extraction != nil {
		count = len(msg.Extraction.Tables)
	}
	a.statusBar.SetTableCount(count)
	a.statusBar.SetMessage("")
	a.setView(messages.ViewTables)
}

// fail records err and shows it in the status bar.
func (a *App) fail(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// setView switches the active view and the matching status bar state.
func (a *App) setView(view messages.ViewType) {
	a.currentView = view
	a.statusBar.SetMessage("")
	a.statusBar.SetState(a.barState())
}

func (a *App) barState() status.State {
	switch a.currentView {
	case messages.ViewPreview:
		return status.StatePreview
	case messages.ViewHelp:
		return status.StateHelp
	default:
		return status.StateTables
	}
}

// activeIndex is the previewed table, or the highlighted one in the list.
func (a *App) activeIndex() int {
	if a.currentView == messages.ViewPreview && a.previewView.Index() >= 0 {
		return a.previewView.Index()
	}
	return a.tablesView.Cursor()
}

// nextFormat cycles through the export formats.
func (a *App) nextFormat() domain.OutputFormat {
	formats := a.ports.Export.Formats()
	if len(formats) == 0 {
		return a.format
	}
	i := slices.Index(formats, a.format)
	return formats[(i+1)%len(formats)]
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch {
	case a.loading:
		body = a.styles.Muted.Render("Extracting tables from " + a.source + "...")
	case a.extraction == nil && a.err != nil:
		body = a.styles.Error.Render(a.err.Error())
	case a.currentView == messages.ViewHelp:
		body = a.viewHelp()
	case a.currentView == messages.ViewPreview:
		body = a.previewView.View()
	default:
		body = a.tablesView.View()
	}

	header := a.styles.Title.Render("htmltab")
	lines := strings.Count(body, "\n") + 3
	padding := ""
	if a.height > lines {
		padding = strings.Repeat("\n", a.height-lines)
	}
	return header + "\n\n" + body + padding + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Help"))
	b.WriteString("\n")
	for _, group := range a.keymap.FullHelp() {
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Extraction returns the last loaded extraction.
func (a *App) Extraction() *domain.Extraction {
	return a.extraction
}

// Format returns the current export format.
func (a *App) Format() domain.OutputFormat {
	return a.format
}

// Loading reports whether an extraction is running.
func (a *App) Loading() bool {
	return a.loading
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.tablesView.SetDimensions(width, height-3)
	a.previewView.SetDimensions(width, height-3)
	a.statusBar.SetWidth(width)
}
