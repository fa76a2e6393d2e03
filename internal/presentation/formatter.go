package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"
)

// Formatter handles output formatting
type Formatter struct {
	writer   io.Writer
	json     bool
	renderer *lipgloss.Renderer

	header lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	bad    lipgloss.Style
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithJSON switches every method to indented JSON output.
func WithJSON(enabled bool) Option {
	return func(f *Formatter) { f.json = enabled }
}

// WithoutColor forces plain ASCII output.
func WithoutColor() Option {
	return func(f *Formatter) { f.renderer.SetColorProfile(termenv.Ascii) }
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts ...Option) *Formatter {
	f := &Formatter{
		writer:   writer,
		renderer: lipgloss.NewRenderer(writer),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.header = f.renderer.NewStyle().Bold(true)
	f.muted = f.renderer.NewStyle().Faint(true)
	f.ok = f.renderer.NewStyle().Foreground(lipgloss.Color("2"))
	f.bad = f.renderer.NewStyle().Foreground(lipgloss.Color("1"))
	return f
}

// JSON reports whether the formatter emits JSON.
func (f *Formatter) JSON() bool { return f.json }

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) println(s string) error {
	_, err := fmt.Fprintln(f.writer, s)
	return err
}

// FormatTags lists tag names, one per line.
func (f *Formatter) FormatTags(names []string) error {
	if f.json {
		if names == nil {
			names = []string{}
		}
		return f.FormatJSON(names)
	}
	for _, name := range names {
		if err := f.println(name); err != nil {
			return err
		}
	}
	return nil
}

// FormatForest renders nodes as a tree.
func (f *Formatter) FormatForest(nodes []TreeNodeDTO) error {
	if f.json {
		if nodes == nil {
			nodes = []TreeNodeDTO{}
		}
		return f.FormatJSON(nodes)
	}
	for _, node := range nodes {
		t := f.buildTree(node)
		if err := f.println(t.String()); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) buildTree(node TreeNodeDTO) *tree.Tree {
	t := tree.Root(node.Name).
		RootStyle(f.header).
		EnumeratorStyle(f.muted).
		Enumerator(tree.RoundedEnumerator)
	for _, child := range node.Children {
		if len(child.Children) == 0 {
			t.Child(child.Name)
			continue
		}
		t.Child(f.buildTree(child))
	}
	return t
}

// FormatTagInfo describes one tag.
func (f *Formatter) FormatTagInfo(info TagInfoDTO) error {
	if f.json {
		return f.FormatJSON(info)
	}
	parent := info.Parent
	if parent == "" {
		parent = f.muted.Render("(root)")
	}
	lines := []string{
		f.header.Render(info.Name),
		fmt.Sprintf("  parent:      %s", parent),
		fmt.Sprintf("  depth:       %d", info.Depth),
		fmt.Sprintf("  ancestors:   %s", f.list(info.Ancestors)),
		fmt.Sprintf("  children:    %s", f.list(info.Children)),
		fmt.Sprintf("  descendants: %s", f.list(info.Descendants)),
	}
	return f.println(strings.Join(lines, "\n"))
}

func (f *Formatter) list(items []string) string {
	if len(items) == 0 {
		return f.muted.Render("-")
	}
	return strings.Join(items, ", ")
}

// FormatEntity prints a single entity.
func (f *Formatter) FormatEntity(e EntityDTO) error {
	if f.json {
		return f.FormatJSON(e)
	}
	lines := []string{
		fmt.Sprintf("%s %s", f.header.Render(e.Name), f.muted.Render(e.ID)),
		fmt.Sprintf("  tags:    %s", f.list(e.Tags)),
		fmt.Sprintf("  created: %s", e.CreatedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("  updated: %s", e.UpdatedAt.Format("2006-01-02 15:04:05")),
	}
	return f.println(strings.Join(lines, "\n"))
}

// FormatEntities prints entities as a table.
func (f *Formatter) FormatEntities(es []EntityDTO) error {
	if f.json {
		if es == nil {
			es = []EntityDTO{}
		}
		return f.FormatJSON(es)
	}
	if len(es) == 0 {
		return f.println(f.muted.Render("no entities"))
	}
	return f.println(f.entityTable(es).String())
}

func (f *Formatter) entityTable(es []EntityDTO) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.muted).
		Headers("ID", "NAME", "TAGS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return f.header.Padding(0, 1)
			}
			return f.renderer.NewStyle().Padding(0, 1)
		})
	for _, e := range es {
		t.Row(e.ID, e.Name, strings.Join(e.Tags, ", "))
	}
	return t
}

// FormatQueryResult prints whether a query matched.
func (f *Formatter) FormatQueryResult(r QueryResultDTO) error {
	if f.json {
		return f.FormatJSON(r)
	}
	verdict := f.bad.Render("no match")
	if r.Matched {
		verdict = f.ok.Render("match")
	}
	subject := r.EntityID
	if subject == "" {
		subject = "[" + strings.Join(r.Tags, ", ") + "]"
	}
	return f.println(fmt.Sprintf("%s  %s  %s", verdict, subject, f.muted.Render(r.Query)))
}

// FormatSelection prints the entities a query selected.
func (f *Formatter) FormatSelection(s SelectionDTO) error {
	if f.json {
		if s.Entities == nil {
			s.Entities = []EntityDTO{}
		}
		return f.FormatJSON(s)
	}
	title := s.Query
	if s.Name != "" {
		title = s.Name + ": " + s.Query
	}
	if err := f.println(f.header.Render(title)); err != nil {
		return err
	}
	return f.FormatEntities(s.Entities)
}

// FormatImportResult summarises an import.
func (f *Formatter) FormatImportResult(r ImportResultDTO) error {
	if f.json {
		return f.FormatJSON(r)
	}
	lines := []string{fmt.Sprintf("created %d tag(s)", len(r.Created))}
	for _, name := range r.Created {
		lines = append(lines, "  + "+name)
	}
	if len(r.Queries) > 0 {
		lines = append(lines, fmt.Sprintf("queries: %s", strings.Join(r.Queries, ", ")))
	}
	for _, msg := range r.Errors {
		lines = append(lines, f.bad.Render("  ! "+msg))
	}
	return f.println(strings.Join(lines, "\n"))
}

// FormatRemoveResult summarises a removal.
func (f *Formatter) FormatRemoveResult(r RemoveResultDTO) error {
	if f.json {
		return f.FormatJSON(r)
	}
	lines := []string{fmt.Sprintf("removed %d tag(s)", len(r.Removed))}
	for _, name := range r.Removed {
		lines = append(lines, "  - "+name)
	}
	if len(r.Pruned) > 0 {
		lines = append(lines, fmt.Sprintf("pruned %d entit(ies): %s", len(r.Pruned), strings.Join(r.Pruned, ", ")))
	}
	return f.println(strings.Join(lines, "\n"))
}

// FormatMessage prints a plain status line, or {"message": ...} in JSON mode.
func (f *Formatter) FormatMessage(msg string) error {
	if f.json {
		return f.FormatJSON(map[string]string{"message": msg})
	}
	return f.println(msg)
}

// FormatReloadResult summarises a taxonomy replacement.
func (f *Formatter) FormatReloadResult(r ReloadResultDTO) error {
	if f.json {
		return f.FormatJSON(r)
	}
	msg := fmt.Sprintf("taxonomy now holds %d tag(s)", r.Tags)
	if len(r.Pruned) > 0 {
		msg += fmt.Sprintf("; pruned %s", strings.Join(r.Pruned, ", "))
	}
	return f.println(msg)
}
