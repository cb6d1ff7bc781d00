package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/export"
	"github.com/DaanHessen/tensioncurve/internal/store"
	"github.com/DaanHessen/tensioncurve/internal/text"
	"github.com/DaanHessen/tensioncurve/internal/util"
)

const (
	panePlot = iota
	paneEvents
	paneActs
	paneCount
)

type prompt int

const (
	promptNone prompt = iota
	promptTitle
	promptAct
	promptClear
)

const (
	formPanelHeight = 9
	eventRows       = 6
	actRows         = 4
)

// Deps are the collaborators the model works with.
type Deps struct {
	Campaign *engine.Campaign
	Store    store.KV
	// Files is set for the file backend; it enables the change watcher.
	Files    *store.FileStore
	Exporter *export.Exporter
	Policy   engine.Policy
	// Renderer builds the advice renderer for a panel width.
	Renderer func(width int) text.Renderer
	Config   util.Config
	Logger   *slog.Logger
}

type statusState struct {
	text string
	err  bool
	id   int
}

type model struct {
	ctx       context.Context
	campaign  *engine.Campaign
	kv        store.KV
	exporter  *export.Exporter
	policy    engine.Policy
	renderer  func(width int) text.Renderer
	cfg       util.Config
	log       *slog.Logger
	watcher   *fsnotify.Watcher
	watchPath string
	lastWrite func() time.Time

	keys   keyMap
	help   help.Model
	theme  string
	styles styles

	width, height int
	focus         int
	cursor        [2]int
	selectedEvent int // -1 when the curve is empty
	selectedAct   int
	form          eventForm

	prompt      prompt
	promptInput textinput.Model
	promptAct   int

	advice   viewport.Model
	adviceMD string
	adviceID int
	rec      engine.Recommendation

	status statusState
	dirty  bool
}

func newModel(ctx context.Context, d Deps) model {
	if d.Campaign == nil {
		d.Campaign = engine.NewCampaign()
	}
	if d.Policy == nil {
		d.Policy = engine.TrendPolicy{}
	}
	if d.Renderer == nil {
		d.Renderer = func(w int) text.Renderer { return text.Plain(w) }
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	pi := textinput.New()
	pi.CharLimit = 120
	m := model{
		ctx:           ctx,
		campaign:      d.Campaign,
		kv:            d.Store,
		exporter:      d.Exporter,
		policy:        d.Policy,
		renderer:      d.Renderer,
		cfg:           d.Config,
		log:           d.Logger,
		keys:          newKeyMap(),
		help:          help.New(),
		theme:         d.Config.Theme,
		styles:        newStyles(paletteFor(d.Config.Theme)),
		selectedEvent: -1,
		form:          newEventForm(),
		promptInput:   pi,
		advice:        viewport.New(30, 6),
	}
	if m.exporter != nil {
		m.exporter.SetColors(exportColors(paletteFor(m.theme)))
	}
	if d.Files != nil {
		m.watchPath = d.Files.Path(d.Config.StoreKey)
		m.lastWrite = d.Files.LastWrite
	}
	if m.campaign.Len() > 0 {
		m.selectEvent(0)
	}
	m.resize()
	pl, _, _ := m.plotGeometry()
	m.cursor = [2]int{pl.width / 2, pl.height / 2}
	m.rec = m.policy.Recommend(m.campaign.Curve())
	m.adviceMD = text.AdviceMarkdown(m.rec)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(renderAdvice(m.adviceID, m.adviceMD, m.renderer(m.advice.Width)), m.watch())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, m.refreshAdvice()
	case adviceMsg:
		if msg.id == m.adviceID {
			m.advice.SetContent(msg.rendered)
		}
		return m, nil
	case savedMsg:
		m.dirty = false
		m.log.Info("campaign saved", "key", msg.key, "backend", m.cfg.Backend, "points", m.campaign.Len())
		return m, m.setStatus("Campaign saved successfully!")
	case loadedMsg:
		m.campaign = msg.campaign
		m.selectedAct = 0
		m.form.unbind()
		m.selectedEvent = -1
		if m.campaign.Len() > 0 {
			m.selectEvent(0)
		}
		cmd := m.touch()
		m.dirty = false
		m.log.Info("campaign loaded", "key", m.cfg.StoreKey, "points", m.campaign.Len(), "acts", m.campaign.ActCount())
		return m, tea.Batch(cmd, m.setStatus("Campaign loaded successfully!"))
	case exportedMsg:
		return m, m.setStatus("Exported " + msg.path)
	case copiedMsg:
		return m, m.setStatus("Copied " + msg.what + " to the clipboard.")
	case fileChangedMsg:
		m.log.Info("campaign changed on disk", "path", msg.path)
		return m, tea.Batch(m.setStatus("Campaign file changed on disk; press L to reload."), m.watch())
	case watchErrMsg:
		return m, tea.Batch(m.setError(msg.err), m.watch())
	case statusClearMsg:
		if msg.id == m.status.id {
			m.status = statusState{id: m.status.id}
		}
		return m, nil
	case errMsg:
		return m, m.setError(msg.err)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || m.prompt != promptNone || m.form.editing {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.advice.LineUp(3)
	case tea.MouseButtonWheelDown:
		m.advice.LineDown(3)
	case tea.MouseButtonLeft:
		pl, ox, oy := m.plotGeometry()
		col, row := msg.X-ox, msg.Y-oy
		if !pl.contains(col, row) {
			return m, nil
		}
		m.focus = panePlot
		m.cursor = [2]int{col, row}
		return m, m.addPoint(pl.cellToData(col, row))
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.form.editing {
		return m.handleFormKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		step := 1
		if msg.String() == "shift+tab" {
			step = -1
		}
		m.focus = (m.focus + step + paneCount) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.AddAct):
		i := m.campaign.AddAct()
		m.selectedAct = i
		pos := m.campaign.Acts()[i]
		m.log.Info("act added", "act", i+1, "progress", pos)
		return m, tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Added %s at %.2f.", engine.ActLabel(i), pos)))
	case key.Matches(msg, m.keys.Save):
		if m.kv == nil {
			return m, m.setError(errors.New("no store configured"))
		}
		return m, saveCampaign(m.ctx, m.kv, m.cfg.StoreKey, m.campaign.Clone())
	case key.Matches(msg, m.keys.Load):
		if m.kv == nil {
			return m, m.setError(errors.New("no store configured"))
		}
		return m, loadCampaign(m.ctx, m.kv, m.cfg.StoreKey)
	case key.Matches(msg, m.keys.Export):
		return m, m.openPrompt(promptTitle, "Campaign title: ", "")
	case key.Matches(msg, m.keys.ExportBare):
		if m.exporter == nil {
			return m, m.setError(errors.New("export is not configured"))
		}
		return m, tea.Batch(m.setStatus("Exporting..."), exportCampaign(m.ctx, m.exporter, m.campaign.Clone(), export.LayoutBare, ""))
	case key.Matches(msg, m.keys.CopyAdvice):
		return m, copyText("advice", m.rec.Text())
	case key.Matches(msg, m.keys.CopyLegend):
		return m, copyText("legend", export.LegendText(m.campaign))
	case key.Matches(msg, m.keys.Clear):
		if m.campaign.Len() == 0 && m.campaign.ActCount() == 0 {
			return m, m.setStatus("Nothing to clear.")
		}
		return m, m.openPrompt(promptClear, "", "")
	case key.Matches(msg, m.keys.Theme):
		m.theme = nextThemeName(m.theme, 1)
		m.styles = newStyles(paletteFor(m.theme))
		if m.exporter != nil {
			m.exporter.SetColors(exportColors(paletteFor(m.theme)))
		}
		return m, m.setStatus("Theme: " + m.theme)
	}

	switch m.focus {
	case panePlot:
		return m.handlePlotKey(msg)
	case paneEvents:
		return m.handleEventsKey(msg)
	default:
		return m.handleActsKey(msg)
	}
}

func (m model) handlePlotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pl, _, _ := m.plotGeometry()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.cursor[0] = max(m.cursor[0]-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.cursor[0] = min(m.cursor[0]+1, pl.width-1)
	case key.Matches(msg, m.keys.Up):
		m.cursor[1] = max(m.cursor[1]-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor[1] = min(m.cursor[1]+1, pl.height-1)
	case key.Matches(msg, m.keys.AddPoint):
		return m, m.addPoint(pl.cellToData(m.cursor[0], m.cursor[1]))
	case key.Matches(msg, m.keys.Edit):
		return m, m.form.startEditing()
	case key.Matches(msg, m.keys.Remove):
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.Move):
		return m, m.moveSelected()
	}
	return m, nil
}

func (m model) handleEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.campaign.Len()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selectedEvent > 0 {
			m.selectEvent(m.selectedEvent - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if m.selectedEvent < n-1 {
			m.selectEvent(m.selectedEvent + 1)
		}
	case key.Matches(msg, m.keys.Edit):
		return m, m.form.startEditing()
	case key.Matches(msg, m.keys.Remove):
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.Move):
		return m, m.moveSelected()
	}
	return m, nil
}

func (m model) handleActsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.campaign.ActCount()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selectedAct = max(m.selectedAct-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.selectedAct = max(min(m.selectedAct+1, n-1), 0)
	case key.Matches(msg, m.keys.Edit):
		if n == 0 {
			return m, nil
		}
		m.promptAct = m.selectedAct
		current := fmt.Sprintf("%g", m.campaign.Acts()[m.selectedAct])
		return m, m.openPrompt(promptAct, engine.ActLabel(m.selectedAct)+" position: ", current)
	case key.Matches(msg, m.keys.Remove):
		i := m.selectedAct
		if err := m.campaign.RemoveAct(i); err != nil {
			return m, m.setError(err)
		}
		m.selectedAct = max(min(i, m.campaign.ActCount()-1), 0)
		m.log.Info("act removed", "act", i+1)
		return m, tea.Batch(m.touch(), m.setStatus("Removed "+engine.ActLabel(i)+"."))
	}
	return m, nil
}

func (m model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		_ = m.form.load(m.campaign, m.form.index)
		m.form.stopEditing()
		return m, m.setStatus("Edit cancelled.")
	case "tab":
		return m, m.form.cycle(1)
	case "shift+tab":
		return m, m.form.cycle(-1)
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.form.focus != fieldDescription {
			return m.submitForm()
		}
	}
	return m, m.form.update(msg)
}

func (m model) submitForm() (tea.Model, tea.Cmd) {
	i := m.form.index
	if err := m.form.submit(m.campaign); err != nil {
		return m, m.setError(err)
	}
	ev, _ := m.campaign.Event(i)
	m.log.Info("event updated", "index", i, "name", ev.Name, "act", ev.Act)
	return m, tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Saved event %d.", i+1)))
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.prompt
	if kind == promptClear {
		m.closePrompt()
		if msg.String() != "y" && msg.String() != "Y" {
			return m, m.setStatus("Clear cancelled.")
		}
		m.campaign.Clear()
		m.form.unbind()
		m.selectedEvent = -1
		m.selectedAct = 0
		m.log.Info("campaign cleared")
		return m, tea.Batch(m.touch(), m.setStatus("Cleared all points, events and acts."))
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		if kind == promptTitle {
			return m, m.setError(errors.Wrap(engine.ErrAborted, "export cancelled"))
		}
		return m, nil
	case tea.KeyEnter:
		value := m.promptInput.Value()
		m.closePrompt()
		switch kind {
		case promptTitle:
			if strings.TrimSpace(value) == "" {
				return m, m.setError(errors.Wrap(engine.ErrAborted, "export needs a campaign title"))
			}
			if m.exporter == nil {
				return m, m.setError(errors.New("export is not configured"))
			}
			return m, tea.Batch(m.setStatus("Exporting..."), exportCampaign(m.ctx, m.exporter, m.campaign.Clone(), export.LayoutAnnotated, value))
		case promptAct:
			i := m.promptAct
			if err := m.campaign.EditAct(i, value); err != nil {
				return m, m.setError(err)
			}
			m.log.Info("act moved", "act", i+1, "progress", m.campaign.Acts()[i])
			return m, tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Moved %s to %.2f.", engine.ActLabel(i), m.campaign.Acts()[i])))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m *model) addPoint(progress, tension float64) tea.Cmd {
	i := m.campaign.AddPoint(progress, tension)
	m.selectEvent(i)
	m.log.Info("point added", "index", i, "progress", progress, "tension", tension)
	return tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Added point %d at (%.2f, %.2f).", i+1, progress, tension)))
}

func (m *model) removeSelected() tea.Cmd {
	i := m.selectedEvent
	if err := m.campaign.RemovePoint(i); err != nil {
		return m.setError(err)
	}
	m.log.Info("point removed", "index", i)
	if n := m.campaign.Len(); n > 0 {
		m.selectEvent(min(i, n-1))
	} else {
		m.selectedEvent = -1
		m.form.unbind()
	}
	return tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Removed point %d.", i+1)))
}

// moveSelected repositions the selected point at the crosshair.
func (m *model) moveSelected() tea.Cmd {
	pl, _, _ := m.plotGeometry()
	progress, tension := pl.cellToData(m.cursor[0], m.cursor[1])
	i := m.selectedEvent
	if err := m.campaign.MovePoint(i, progress, tension); err != nil {
		return m.setError(err)
	}
	m.log.Info("point moved", "index", i, "progress", progress, "tension", tension)
	return tea.Batch(m.touch(), m.setStatus(fmt.Sprintf("Moved point %d to (%.2f, %.2f).", i+1, progress, tension)))
}

func (m *model) selectEvent(i int) {
	if err := m.form.load(m.campaign, i); err != nil {
		return
	}
	m.selectedEvent = i
}

func (m model) watch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return watchCampaign(m.watcher, m.watchPath, m.lastWrite)
}

// touch marks unsaved changes and recomputes the advice.
func (m *model) touch() tea.Cmd {
	m.dirty = true
	return m.refreshAdvice()
}

func (m *model) refreshAdvice() tea.Cmd {
	m.rec = m.policy.Recommend(m.campaign.Curve())
	m.adviceMD = text.AdviceMarkdown(m.rec)
	m.adviceID++
	return renderAdvice(m.adviceID, m.adviceMD, m.renderer(m.advice.Width))
}

func (m *model) openPrompt(kind prompt, label, value string) tea.Cmd {
	m.prompt = kind
	m.promptInput.Prompt = label
	m.promptInput.SetValue(value)
	m.promptInput.CursorEnd()
	return m.promptInput.Focus()
}

func (m *model) closePrompt() {
	m.prompt = promptNone
	m.promptInput.Blur()
	m.promptInput.SetValue("")
}

func (m *model) setStatus(s string) tea.Cmd {
	m.status.id++
	m.status.text = s
	m.status.err = false
	return clearStatusAfter(m.status.id)
}

func (m *model) setError(err error) tea.Cmd {
	m.log.Warn("action rejected", "err", err)
	m.status.id++
	m.status.text = describeError(err)
	m.status.err = true
	return clearStatusAfter(m.status.id)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return "No saved campaign found!"
	case errors.Is(err, engine.ErrAborted):
		return "Export cancelled."
	default:
		return err.Error()
	}
}

func (m model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 32
	}
	return w, h
}

func (m model) columns() (left, right int) {
	w, _ := m.size()
	right = min(max(w/3, 30), 52)
	return w - right, right
}

// plotGeometry returns the plot and the screen cell of its top-left corner.
// Row 0 is the header, then the panel border; column 0 is the border, then
// one cell of padding and the y-axis gutter.
func (m model) plotGeometry() (plot, int, int) {
	lw, _ := m.columns()
	_, h := m.size()
	width := lw - 4 - plotGutter
	height := h - 1 - 2 - 1 - formPanelHeight - 2
	return newPlot(width, max(height, 6), m.campaign.Curve(), m.campaign.Acts()), 2 + plotGutter, 2
}

func (m *model) resize() {
	lw, rw := m.columns()
	_, h := m.size()
	m.form.setWidth(lw - 4)
	m.advice.Width = rw - 4
	m.advice.Height = max(h-1-(3+eventRows)-(3+actRows)-2-2, 4)
	m.help.Width = lw + rw
	m.promptInput.Width = max(lw-20, 10)
	pl, _, _ := m.plotGeometry()
	m.cursor[0] = min(m.cursor[0], pl.width-1)
	m.cursor[1] = min(m.cursor[1], pl.height-1)
}

func (m model) panel(active bool) lipgloss.Style {
	if active {
		return m.styles.focused
	}
	return m.styles.panel
}

func (m model) View() string {
	lw, rw := m.columns()
	pl, _, _ := m.plotGeometry()

	header := m.styles.title.Render("TENSION CURVE")
	cx, cy := pl.cellToData(m.cursor[0], m.cursor[1])
	info := fmt.Sprintf("  %d points • %d acts • %s advice • cursor (%.2f, %.2f)",
		m.campaign.Len(), m.campaign.ActCount(), m.policy.Name(), cx, cy)
	if m.dirty {
		info += " • unsaved"
	}
	header += m.styles.muted.Render(info)

	plotView := pl.render(m.campaign.Curve(), m.campaign.Acts(), m.selectedEvent, m.cursor, m.styles)
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(m.focus == panePlot).Width(lw-2).Render(plotView),
		m.panel(m.form.editing).Width(lw-2).Render(m.form.view(m.styles)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(m.focus == paneEvents).Width(rw-2).Render(m.eventsView(rw-4)),
		m.panel(m.focus == paneActs).Width(rw-2).Render(m.actsView(rw-4)),
		m.styles.panel.Width(rw-2).Render(m.advice.View()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusLine(), m.footer())
}

func (m model) eventsView(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.heading.Render("Events"))
	events := m.campaign.Events()
	if len(events) == 0 {
		b.WriteString("\n" + m.styles.muted.Render("(none yet)"))
	}
	lo, hi := window(len(events), m.selectedEvent, eventRows)
	for i := lo; i < hi; i++ {
		ev := events[i]
		ln := fmt.Sprintf("%2d. %s", i+1, ev.Name)
		if ev.Act != "" {
			ln += " [" + ev.Act + "]"
		}
		ln = truncate(ln, width)
		if i == m.selectedEvent {
			ln = m.styles.selected.Render(ln)
		}
		b.WriteString("\n" + ln)
	}
	return b.String()
}

func (m model) actsView(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.heading.Render("Acts"))
	acts := m.campaign.Acts()
	if len(acts) == 0 {
		b.WriteString("\n" + m.styles.muted.Render("(none; press a)"))
	}
	lo, hi := window(len(acts), m.selectedAct, actRows)
	for i := lo; i < hi; i++ {
		ln := truncate(fmt.Sprintf("%s at %.2f", engine.ActLabel(i), acts[i]), width)
		if i == m.selectedAct && m.focus == paneActs {
			ln = m.styles.selected.Render(ln)
		}
		b.WriteString("\n" + ln)
	}
	return b.String()
}

func (m model) statusLine() string {
	if m.status.text == "" {
		return ""
	}
	if m.status.err {
		return m.styles.errText.Render(m.status.text)
	}
	return m.styles.status.Render(m.status.text)
}

func (m model) footer() string {
	switch m.prompt {
	case promptClear:
		return m.styles.errText.Render("Clear all points, events and acts? (y/n)")
	case promptNone:
		return m.help.View(m.keys)
	default:
		return m.promptInput.View() + m.styles.muted.Render("  enter confirm • esc cancel")
	}
}

// window returns the slice bounds of at most size rows keeping sel visible.
func window(n, sel, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	lo := min(max(sel-size/2, 0), n-size)
	return lo, lo + size
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
