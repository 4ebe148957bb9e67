package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/accordion/pkg/metrics"
	"github.com/vanderheijden86/accordion/pkg/model"
)

// chromeLines is the header plus the status line.
const chromeLines = 2

// listHeight returns how many rows fit between header and footer.
func (m Model) listHeight() int {
	h := m.height - chromeLines - m.footerLines()
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) footerLines() int {
	lines := 0
	switch {
	case m.help.ShowAll:
		lines = len(m.keys.FullHelp()[0])
	case m.showHelp:
		lines = 1
	}
	switch {
	case m.mode == modeConfirmDelete:
		lines += 3 // bordered dialog
	case m.mode != modeList || m.search.Value() != "":
		lines++
	}
	return lines
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if len(m.rows) == 0 {
		sb.WriteString(m.renderEmptyState())
	} else {
		end := m.offset + m.listHeight()
		if end > len(m.rows) {
			end = len(m.rows)
		}
		for i := m.offset; i < end; i++ {
			sb.WriteString(m.renderRow(m.rows[i], i == m.cursor))
			sb.WriteString("\n")
		}
	}

	switch m.mode {
	case modeSearch:
		sb.WriteString(m.search.View())
		sb.WriteString("\n")
	case modeInput:
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	case modeConfirmDelete:
		sb.WriteString(m.renderConfirm())
		sb.WriteString("\n")
	default:
		if q := m.search.Value(); q != "" {
			sb.WriteString(m.theme.MutedText.Render("search: " + q + "  (/ to edit, esc in search to clear)"))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.renderStatus())
	if m.showHelp || m.help.ShowAll {
		sb.WriteString("\n")
		sb.WriteString(m.help.View(m.keys))
	}
	return sb.String()
}

// renderHeader shows the title, sort state and row counter.
func (m Model) renderHeader() string {
	s := m.list.Settings()
	left := "Folders"
	right := fmt.Sprintf("%s  %d", sortLabel(s.SortKey, s.Direction()), len(m.rows))
	if !m.list.CanReorder() {
		right = "read-only order  " + right
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	inner := width - 2 // header padding
	gap := inner - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return m.theme.Header.Width(width).MaxWidth(width).Render(truncate(line, inner))
}

// renderRow renders one folder: indentation, marker, title.
func (m Model) renderRow(r model.Row, selected bool) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width--
	if selected {
		width -= 2 // selected border and padding
	}

	prefix := indent(r.Level)
	marker := expandIndicator(r)
	titleWidth := width - runewidth.StringWidth(prefix) - runewidth.StringWidth(marker) - 1
	title := truncate(r.Title, titleWidth)

	titleStyle := m.theme.LeafText
	if r.HasChildren {
		titleStyle = m.theme.FolderText
	}

	row := m.theme.MutedText.Render(prefix) +
		m.theme.Indicator.Render(marker) + " " +
		titleStyle.Render(padRight(title, titleWidth))

	if selected {
		return m.theme.Selected.Render(row)
	}
	return row
}

// renderEmptyState explains an empty list.
func (m Model) renderEmptyState() string {
	muted := m.theme.MutedText
	if m.search.Value() != "" {
		return muted.Render("No folders match the search.") + "\n"
	}
	return muted.Render("No folders yet. Press a to add one.") + "\n"
}

func (m Model) renderConfirm() string {
	title := m.titleOf(m.target)
	msg := fmt.Sprintf("Delete %q and everything inside it? (y/n)", truncate(title, 40))
	return m.theme.Dialog.Render(msg)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		if len(m.rows) > m.listHeight() {
			return m.theme.MutedText.Render(fmt.Sprintf(" %d-%d of %d",
				m.offset+1, min(m.offset+m.listHeight(), len(m.rows)), len(m.rows)))
		}
		return ""
	}
	style := m.theme.StatusOK
	if m.statusErr {
		style = m.theme.StatusError
	}
	return style.Render(truncate(m.status, max(m.width, 10)))
}
