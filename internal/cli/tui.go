package cli

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/render/nodelink"
	"github.com/iamvince24/serenity-canvas/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// nudge is how far the shifted movement keys drag the selection.
const nudge = 20.0

// nudgeKeys maps shifted vim keys to drag offsets.
var nudgeKeys = map[string][2]float64{
	"H": {-nudge, 0},
	"J": {0, nudge},
	"K": {0, -nudge},
	"L": {nudge, 0},
}

// tuiCommand creates the interactive canvas navigator.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <canvas>",
		Short: "Browse and edit a canvas from the terminal",
		Long: `Browse and edit a canvas from the terminal.

Arrow keys move the selection to the nearest node in that direction,
tab cycles through the layer order and H/J/K/L nudge the selection.
Enter edits the selected text node; enter again commits and esc
discards. The bracket keys change stacking, delete removes the
selection, ctrl+z and ctrl+y undo and redo, n adds a note, c connects
the two selected nodes and ctrl+s saves.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCanvases,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, backing, err := c.openAssets(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			ref := parseCanvasRef(args[0])
			st, report, err := loadCanvas(ctx, cfg, ref)
			if err != nil {
				return err
			}
			if report.Changed() {
				c.Logger.Warn("canvas was migrated; saving writes the current format", "report", report.String())
			}
			s := c.newStore(cfg, backing)
			if err := s.Load(st); err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Loading images...")
			spinner.Start()
			err = s.PreloadImages(ctx)
			spinner.Stop()
			var multi *errors.MultiError
			if stderrors.As(err, &multi) {
				printWarning("%d images could not be loaded", multi.Len())
			} else if err != nil && !errors.Is(err, errors.ErrCodeUnsupported) {
				return err
			}

			m := newCanvasModel(s, ref.String(), func() (string, error) {
				return saveCanvas(ctx, cfg, ref, s.Snapshot())
			})
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(canvasModel); ok && fm.dirty {
				printWarning("Unsaved changes to %s were discarded", ref)
			}
			return nil
		},
	}
}

// =============================================================================
// canvasModel - Interactive canvas navigation
// =============================================================================

// canvasModel is the bubbletea model over a canvas store. The store is
// shared by every copy of the model.
type canvasModel struct {
	store  *store.Store
	title  string
	save   func() (string, error)
	draft  []rune
	status string
	dirty  bool
	saved  [2]int // history lengths at the last save
	height int
}

func newCanvasModel(s *store.Store, title string, save func() (string, error)) canvasModel {
	undo, redo := s.HistoryLen()
	return canvasModel{store: s, title: title, save: save, saved: [2]int{undo, redo}, height: 15}
}

func (m canvasModel) Init() tea.Cmd {
	return nil
}

func (m canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if _, editing := m.store.EditingNode(); editing {
			return m.updateEditing(msg), nil
		}
		return m.updateIdle(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// updateEditing feeds keys to the draft until enter or esc.
func (m canvasModel) updateEditing(msg tea.KeyMsg) canvasModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.fail(m.store.CommitEdit(string(m.draft)))
		m.draft = nil
	case tea.KeyEsc:
		m.store.HandleKey("esc")
		m.draft = nil
		m.status = "edit discarded"
	case tea.KeyBackspace:
		if len(m.draft) > 0 {
			m.draft = m.draft[:len(m.draft)-1]
		}
	case tea.KeySpace:
		m.draft = append(m.draft, ' ')
	case tea.KeyRunes:
		m.draft = append(m.draft, msg.Runes...)
	}
	return m.track()
}

func (m canvasModel) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.status = ""
	switch key {
	case "q":
		return m, tea.Quit
	case "ctrl+s":
		path, err := m.save()
		if m.fail(err) {
			return m, nil
		}
		undo, redo := m.store.HistoryLen()
		m.saved = [2]int{undo, redo}
		m.dirty = false
		m.status = "saved " + path
		return m, nil
	case "enter":
		sel := m.store.Selected()
		if len(sel) != 1 {
			m.status = "select one node to edit"
			return m, nil
		}
		n, _ := m.store.Node(sel[0])
		if n.Kind != canvas.KindText {
			m.status = "only text nodes can be edited"
			return m, nil
		}
		if !m.fail(m.store.BeginEdit(n.ID)) {
			m.draft = []rune(n.Text())
		}
		return m, nil
	case "tab":
		m.cycle()
		return m, nil
	case "n":
		m.addNote()
		return m.track(), nil
	case "c":
		sel := m.store.Selected()
		if len(sel) != 2 {
			m.status = "select two nodes to connect"
			return m, nil
		}
		_, err := m.store.AddEdge(sel[0], sel[1])
		m.fail(err)
		return m.track(), nil
	}
	if d, ok := nudgeKeys[key]; ok {
		m.drag(d[0], d[1])
		return m.track(), nil
	}
	m.store.HandleKey(key)
	return m.track(), nil
}

// track marks the model dirty when the history moved since the last save.
func (m canvasModel) track() canvasModel {
	undo, redo := m.store.HistoryLen()
	m.dirty = [2]int{undo, redo} != m.saved
	return m
}

// fail shows err in the status line and reports whether there was one.
func (m *canvasModel) fail(err error) bool {
	if err == nil {
		return false
	}
	m.status = errors.UserMessage(err)
	return true
}

// cycle selects the next node in layer order, wrapping around.
func (m *canvasModel) cycle() {
	order := m.store.Order()
	if len(order) == 0 {
		return
	}
	next := 0
	if sel := m.store.Selected(); len(sel) > 0 {
		next = (slices.Index(order, sel[len(sel)-1]) + 1) % len(order)
	}
	m.store.Select(order[next])
}

// addNote places an empty text node right of the selection, or at the
// viewport origin, and starts editing it.
func (m *canvasModel) addNote() {
	x, y := m.store.Viewport().ScreenToWorld(0, 0)
	if sel := m.store.Selected(); len(sel) > 0 {
		if n, ok := m.store.Node(sel[len(sel)-1]); ok {
			x, y = n.X+n.Width+nudge*2, n.Y
		}
	}
	id := m.store.AddTextNode(x, y, "")
	if !m.fail(m.store.BeginEdit(id)) {
		m.draft = nil
	}
}

// drag moves the selection as one undoable step.
func (m *canvasModel) drag(dx, dy float64) {
	if m.fail(m.store.BeginDrag(nil)) {
		return
	}
	if m.fail(m.store.PreviewDrag(dx, dy)) {
		m.store.CancelGesture()
		return
	}
	m.fail(m.store.CommitDrag())
}

func (m canvasModel) View() string {
	var b strings.Builder

	title := m.title
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←↑↓→ move  tab cycle  ⏎ edit  n note  c connect  [ ] { } stack  del delete  ctrl+s save  q quit"))
	b.WriteString("\n\n")

	// Topmost node first.
	order := slices.Clone(m.store.Order())
	slices.Reverse(order)
	selected := make(map[string]bool)
	for _, id := range m.store.Selected() {
		selected[id] = true
	}
	editing, _ := m.store.EditingNode()

	// Scroll so the first selected node is visible.
	offset := 0
	for i, id := range order {
		if selected[id] {
			offset = max(0, i-m.height+1)
			break
		}
	}
	end := min(offset+m.height, len(order))

	var rows [][]string
	var rowIDs []string
	for _, id := range order[offset:end] {
		n, ok := m.store.Node(id)
		if !ok {
			continue
		}
		cursor := "  "
		if selected[id] {
			cursor = "▸ "
		}
		label := nodelink.Label(n)
		if id == editing {
			label = string(m.draft) + "▏"
		}
		rows = append(rows, []string{
			cursor,
			label,
			string(n.Kind),
			fmt.Sprintf("%.0f,%.0f", n.X, n.Y),
			fmt.Sprintf("%.0f×%.0f", n.Width, n.Height),
		})
		rowIDs = append(rowIDs, id)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Position", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(rowIDs) {
				return lipgloss.NewStyle()
			}
			if selected[rowIDs[row]] {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	undo, redo := m.store.HistoryLen()
	vp := m.store.Viewport()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %d edges · %s · zoom %.2f · undo %d redo %d",
		len(order), len(m.store.Snapshot().Edges), m.store.Mode(), vp.Zoom, undo, redo)))
	if m.status != "" {
		b.WriteString("\n  ")
		b.WriteString(StyleWarning.Render(m.status))
	}

	return b.String()
}
