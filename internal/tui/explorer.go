// Package tui provides the terminal user interface for craftplan.
// The explorer lets users browse a domain's method library and preview
// decompositions without leaving the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tverens/craftplan/pkg/htn"
)

// Explorer is the bubbletea model for browsing a planning domain.
type Explorer struct {
	// domain is the method library being browsed.
	domain *htn.Domain
	// state is the world state used for plan previews.
	state *htn.WorldState
	// planner produces the plan previews.
	planner *htn.Planner
	// allTasks is every compound task name in registration order.
	allTasks []string
	// tasks is allTasks narrowed by the current filter.
	tasks []string
	// cursor is the selected index into tasks.
	cursor int
	// filter is the task name filter input.
	filter textinput.Model
	// filtering reports whether the filter input has focus.
	filtering bool
	// preview holds the last plan preview, nil before any planning.
	preview *previewResult
	// width is the terminal width.
	width int
	// height is the terminal height.
	height int
	// quitting indicates the app is shutting down.
	quitting bool

	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	dimStyle      lipgloss.Style
	panelStyle    lipgloss.Style
	failStyle     lipgloss.Style
	okStyle       lipgloss.Style
}

// previewResult captures one plan preview for the selected task.
type previewResult struct {
	task  string
	plan  []*htn.Task
	stats htn.Stats
}

// NewExplorer creates an Explorer for the given domain and world state.
func NewExplorer(domain *htn.Domain, state *htn.WorldState, planner *htn.Planner) *Explorer {
	ti := textinput.New()
	ti.Placeholder = "Filter tasks..."
	ti.CharLimit = 100
	ti.Width = 30

	e := &Explorer{
		domain:   domain,
		state:    state,
		planner:  planner,
		allTasks: domain.TaskNames(),
		filter:   ti,
		width:    80,
		height:   24,

		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		okStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")),
	}
	e.tasks = e.allTasks
	return e
}

// Init implements tea.Model.
func (e *Explorer) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		return e, nil

	case tea.KeyMsg:
		if e.filtering {
			return e.updateFiltering(msg)
		}
		return e.updateBrowsing(msg)
	}
	return e, nil
}

func (e *Explorer) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		e.filtering = false
		e.filter.Blur()
		return e, nil
	case "ctrl+c":
		e.quitting = true
		return e, tea.Quit
	}

	var cmd tea.Cmd
	e.filter, cmd = e.filter.Update(msg)
	e.applyFilter()
	return e, cmd
}

func (e *Explorer) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		e.quitting = true
		return e, tea.Quit
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.tasks)-1 {
			e.cursor++
		}
	case "/":
		e.filtering = true
		return e, e.filter.Focus()
	case "enter", "p":
		e.previewSelected()
	}
	return e, nil
}

// applyFilter narrows the task list to names containing the filter text.
func (e *Explorer) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(e.filter.Value()))
	if query == "" {
		e.tasks = e.allTasks
	} else {
		filtered := make([]string, 0, len(e.allTasks))
		for _, name := range e.allTasks {
			if strings.Contains(strings.ToLower(name), query) {
				filtered = append(filtered, name)
			}
		}
		e.tasks = filtered
	}
	if e.cursor >= len(e.tasks) {
		e.cursor = 0
	}
}

// previewSelected runs the planner for the task under the cursor.
func (e *Explorer) previewSelected() {
	if e.cursor >= len(e.tasks) {
		return
	}
	name := e.tasks[e.cursor]
	goal, err := htn.NewTask(name).Build()
	if err != nil {
		return
	}
	plan, stats := e.planner.DecomposeWithStats(goal, e.state)
	e.preview = &previewResult{task: name, plan: plan, stats: stats}
}

// SelectedTask returns the task name under the cursor, or "" when the
// filtered list is empty.
func (e *Explorer) SelectedTask() string {
	if e.cursor >= len(e.tasks) {
		return ""
	}
	return e.tasks[e.cursor]
}

// View implements tea.Model.
func (e *Explorer) View() string {
	if e.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(e.titleStyle.Render(fmt.Sprintf("craftplan explorer — %s", e.domain.Name())))
	b.WriteString(e.dimStyle.Render(fmt.Sprintf("  (%d tasks, %d methods)", e.domain.TaskCount(), e.domain.MethodCount())))
	b.WriteString("\n\n")

	if e.filtering || e.filter.Value() != "" {
		b.WriteString(e.filter.View())
		b.WriteString("\n\n")
	}

	left := e.renderTaskList()
	right := e.renderDetail()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	b.WriteString(e.dimStyle.Render("↑/↓ move · enter preview plan · / filter · q quit"))
	return b.String()
}

func (e *Explorer) renderTaskList() string {
	var b strings.Builder
	if len(e.tasks) == 0 {
		b.WriteString(e.dimStyle.Render("no matching tasks"))
	}
	for i, name := range e.tasks {
		line := fmt.Sprintf("%-26s", name)
		if i == e.cursor {
			line = e.selectedStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(e.tasks)-1 {
			b.WriteString("\n")
		}
	}
	return e.panelStyle.Render(b.String())
}

func (e *Explorer) renderDetail() string {
	var b strings.Builder

	name := e.SelectedTask()
	if name == "" {
		return e.panelStyle.Render(e.dimStyle.Render("select a task"))
	}

	b.WriteString(e.titleStyle.Render(name))
	b.WriteString("\n")

	for _, m := range e.domain.MethodsForTask(name) {
		b.WriteString(fmt.Sprintf("  [%d] %s", m.Priority(), m.Name()))
		if desc := m.Description(); desc != "" {
			b.WriteString(e.dimStyle.Render("  " + desc))
		}
		b.WriteString("\n")
		for _, sub := range m.Subtasks() {
			marker := "·"
			if sub.IsPrimitive() {
				marker = "▸"
			}
			b.WriteString(e.dimStyle.Render(fmt.Sprintf("      %s %s\n", marker, sub.Name())))
		}
	}

	if e.preview != nil && e.preview.task == name {
		b.WriteString("\n")
		if e.preview.plan == nil {
			b.WriteString(e.failStyle.Render("no plan found"))
			b.WriteString(e.dimStyle.Render(fmt.Sprintf(" (%d iterations)", e.preview.stats.Iterations)))
		} else {
			b.WriteString(e.okStyle.Render(fmt.Sprintf("plan (%d steps, %d iterations):", len(e.preview.plan), e.preview.stats.Iterations)))
			for i, step := range e.preview.plan {
				b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step.Name()))
			}
		}
		b.WriteString("\n")
	}

	return e.panelStyle.Render(b.String())
}

// Run starts the explorer program and blocks until the user quits.
func Run(domain *htn.Domain, state *htn.WorldState, planner *htn.Planner) error {
	p := tea.NewProgram(NewExplorer(domain, state, planner), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}
