package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

const (
	fieldName = iota
	fieldDescription
	fieldAct
	fieldCount
)

// eventForm edits the event bound to one curve index.
type eventForm struct {
	index       int // -1 when nothing is bound
	name        textinput.Model
	description textarea.Model
	act         textinput.Model
	focus       int
	editing     bool
}

func newEventForm() eventForm {
	name := textinput.New()
	name.Placeholder = "Event name"
	name.CharLimit = 120
	name.Prompt = "Name: "

	desc := textarea.New()
	desc.Placeholder = "What happens here?"
	desc.ShowLineNumbers = false
	desc.CharLimit = 2000
	desc.SetHeight(3)

	act := textinput.New()
	act.Placeholder = "e.g. 1"
	act.CharLimit = 40
	act.Prompt = "Act: "

	return eventForm{index: -1, name: name, description: desc, act: act}
}

func (f *eventForm) setWidth(w int) {
	w = max(w, 10)
	f.name.Width = w - len(f.name.Prompt) - 1
	f.act.Width = w - len(f.act.Prompt) - 1
	f.description.SetWidth(w)
}

// load copies record i into the fields.
func (f *eventForm) load(c *engine.Campaign, i int) error {
	ev, err := c.Event(i)
	if err != nil {
		return err
	}
	f.index = i
	f.name.SetValue(ev.Name)
	f.description.SetValue(ev.Description)
	f.act.SetValue(ev.Act)
	return nil
}

// unbind clears the fields, e.g. after the bound point was removed.
func (f *eventForm) unbind() {
	f.index = -1
	f.name.SetValue("")
	f.description.SetValue("")
	f.act.SetValue("")
	f.stopEditing()
}

func (f *eventForm) startEditing() tea.Cmd {
	if f.index < 0 {
		return nil
	}
	f.editing = true
	f.focus = fieldName
	return f.applyFocus()
}

func (f *eventForm) stopEditing() {
	f.editing = false
	f.name.Blur()
	f.description.Blur()
	f.act.Blur()
}

func (f *eventForm) cycle(step int) tea.Cmd {
	f.focus = (f.focus + step + fieldCount) % fieldCount
	return f.applyFocus()
}

func (f *eventForm) applyFocus() tea.Cmd {
	f.name.Blur()
	f.description.Blur()
	f.act.Blur()
	switch f.focus {
	case fieldDescription:
		return f.description.Focus()
	case fieldAct:
		return f.act.Focus()
	default:
		return f.name.Focus()
	}
}

// update forwards a message to the focused field.
func (f *eventForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldAct:
		f.act, cmd = f.act.Update(msg)
	default:
		f.name, cmd = f.name.Update(msg)
	}
	return cmd
}

// validateAct accepts free text labels. A numeric label must be a positive
// whole number.
func validateAct(act string) error {
	act = strings.TrimSpace(act)
	if act == "" {
		return nil
	}
	n, err := strconv.ParseFloat(act, 64)
	if err != nil {
		return nil
	}
	if n <= 0 || n != float64(int64(n)) {
		return errors.Wrapf(engine.ErrInvalidInput, "act number must be a positive whole number, got %q", act)
	}
	return nil
}

// submit validates the fields and writes them to the bound record. Nothing
// changes when validation fails.
func (f *eventForm) submit(c *engine.Campaign) error {
	if f.index < 0 {
		return errors.Wrap(engine.ErrOutOfRange, "no event selected")
	}
	name := strings.TrimSpace(f.name.Value())
	if name == "" {
		return errors.Wrap(engine.ErrInvalidInput, "event name is required")
	}
	act := strings.TrimSpace(f.act.Value())
	if err := validateAct(act); err != nil {
		return err
	}
	if err := c.UpdateEvent(f.index, name, strings.TrimSpace(f.description.Value()), act); err != nil {
		return err
	}
	f.stopEditing()
	return nil
}

func (f eventForm) view(st styles) string {
	if f.index < 0 {
		return st.muted.Render("Click the plot or press space to add a point.")
	}
	var b strings.Builder
	b.WriteString(st.heading.Render("Event "+strconv.Itoa(f.index+1)) + "\n")
	b.WriteString(f.name.View() + "\n")
	b.WriteString(f.description.View() + "\n")
	b.WriteString(f.act.View())
	if f.editing {
		b.WriteString("\n" + st.muted.Render("tab next field • ctrl+s save • esc cancel"))
	}
	return b.String()
}
