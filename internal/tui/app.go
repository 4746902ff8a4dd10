// Package tui provides the interactive Bubble Tea dashboard for pburn.
package tui

import (
	"fmt"
	"strings"
	"time"

	"pburn/internal/config"
	"pburn/internal/model"
	"pburn/internal/pipeline"
	"pburn/internal/store"
	"pburn/internal/tui/components"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Series   []model.ProjectSeries
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Series   []model.ProjectSeries
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	series   []model.ProjectSeries
	loaded   bool
	loadTime time.Duration

	refreshing  bool
	lastRefresh time.Time

	// Pre-computed for current filter
	snap       pipeline.PortfolioSnapshot
	seriesByID map[string]model.ProjectSeries
	computeErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	projCursor int
	settings   settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine

	// Pipeline parameters
	dataDir           string
	project           string
	varianceThreshold float64
	riskThreshold     float64
	useCache          bool
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(dataDir, project string, varianceThreshold, riskThreshold float64, useCache bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		dataDir:           dataDir,
		project:           project,
		varianceThreshold: varianceThreshold,
		riskThreshold:     riskThreshold,
		useCache:          useCache,
		needSetup:         !config.Exists(),
		spinner:           sp,
		loadSub:           make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadDataCmd(a.dataDir, a.useCache, a.loadSub),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	filtered := a.series
	if a.project != "" {
		filtered = pipeline.FilterByProject(filtered, a.project)
	}

	a.seriesByID = make(map[string]model.ProjectSeries, len(filtered))
	for _, s := range filtered {
		a.seriesByID[s.ProjectID] = s
	}

	a.snap, a.computeErr = pipeline.Snapshot(filtered, a.varianceThreshold, a.riskThreshold)

	// Clamp projects cursor to the new row bounds
	if a.projCursor >= len(a.snap.Rows) {
		a.projCursor = len(a.snap.Rows) - 1
	}
	if a.projCursor < 0 {
		a.projCursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Settings tab owns keys while editing (text input)
		if a.activeTab == 3 && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		// Projects tab list navigation
		if a.activeTab == 1 {
			switch key {
			case "j", "down":
				if a.projCursor < len(a.snap.Rows)-1 {
					a.projCursor++
				}
				return a, nil
			case "k", "up":
				if a.projCursor > 0 {
					a.projCursor--
				}
				return a, nil
			case "g":
				a.projCursor = 0
				return a, nil
			case "G":
				a.projCursor = len(a.snap.Rows) - 1
				if a.projCursor < 0 {
					a.projCursor = 0
				}
				return a, nil
			}
		}

		// Settings tab navigation (non-editing mode)
		if a.activeTab == 3 {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		if key == "q" {
			return a, tea.Quit
		}

		// Manual refresh
		if key == "r" && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useCache)
		}

		// Tab navigation
		switch key {
		case "o":
			a.activeTab = 0
		case "p":
			a.activeTab = 1
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(key) == 1 {
				if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.series = msg.Series
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.recompute()

		// Activate first-run setup after data loads
		if a.needSetup {
			a.setupForm = newSetupForm(a.dataDir, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Series != nil {
			a.series = msg.Series
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.applySetupConfig()
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  pburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ pburn"))
	b.WriteString(subtitleStyle.Render(" · Project Budget Burn"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing project files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering project files..."))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"o p k x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Navigate project list"},
		{"g G", "Top / Bottom of list"},
		{"Enter", "Edit setting"},
		{"r", "Refresh data"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// Header: tab bar + filter pill
	filterPillStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	filterAccentStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	filterStr := filterPillStyle.Render(" ") +
		filterAccentStyle.Render(fmt.Sprintf("%d projects", len(a.snap.Rows)))
	if a.project != "" {
		filterStr += filterPillStyle.Render(" │ ") + filterAccentStyle.Render(a.project)
	}
	filterStr += filterPillStyle.Render(" ")

	filterRowStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(w)

	header := components.RenderTabBar(a.activeTab, w) +
		filterRowStyle.Render(filterStr)

	// Status bar
	dataAge := fmt.Sprintf("%.1fs", a.loadTime.Seconds())
	statusBar := components.RenderStatusBar(w, dataAge, a.snap.RiskyCount, len(a.snap.Rows), a.refreshing)

	// Content zone height
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderProjectsTab(cw, contentH)
	case 2:
		content = a.renderRiskTab(cw)
	case 3:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dataDir string, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Progress callback: non-blocking send so workers aren't stalled.
			// If the channel is full, we skip this update; the next one catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			if useCache {
				cache, err := store.Open(pipeline.CachePath())
				if err == nil {
					cr, loadErr := pipeline.LoadWithCache(dataDir, cache, progressFn)
					_ = cache.Close()
					if loadErr == nil {
						sub <- DataLoadedMsg{Series: cr.Series, LoadTime: time.Since(start)}
						return
					}
				}
			}

			// Fallback: uncached load
			result, err := pipeline.Load(dataDir, progressFn)
			if err != nil {
				sub <- DataLoadedMsg{LoadTime: time.Since(start)}
				return
			}
			sub <- DataLoadedMsg{Series: result.Series, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads project data in the background (no progress UI).
func refreshDataCmd(dataDir string, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		if useCache {
			cache, err := store.Open(pipeline.CachePath())
			if err == nil {
				cr, loadErr := pipeline.LoadWithCache(dataDir, cache, nil)
				_ = cache.Close()
				if loadErr == nil {
					return RefreshDataMsg{Series: cr.Series, LoadTime: time.Since(start)}
				}
			}
		}

		result, err := pipeline.Load(dataDir, nil)
		if err != nil {
			return RefreshDataMsg{LoadTime: time.Since(start)}
		}
		return RefreshDataMsg{Series: result.Series, LoadTime: time.Since(start)}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color so
// gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
