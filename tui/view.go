package tui

import (
	"fmt"
	"strings"

	"debatearena/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())

	switch m.session.Screen {
	case models.ScreenTopic:
		sections = append(sections, m.renderTopic())
	case models.ScreenDebate:
		sections = append(sections, m.renderDebate())
	case models.ScreenReport:
		sections = append(sections, m.renderReport())
	}

	if m.session.Error != "" {
		sections = append(sections, errorStyle.Render(m.wrap(m.session.Error)))
	}
	sections = append(sections, helpStyle.Render(m.help()))
	return strings.Join(sections, "\n")
}

func (m Model) wrap(text string) string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	return wordwrap.String(text, width)
}

func (m Model) renderHeader() string {
	t := m.ui()
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(t.AppTitle),
		subtitleStyle.Render(t.AppSubtitle),
	)
}

func (m Model) renderTopic() string {
	t := m.ui()
	var b strings.Builder

	b.WriteString(headingStyle.Render(t.ChooseTopic))
	b.WriteString("\n")
	labels := make([]string, 0, m.topicCount())
	values := make([]string, 0, m.topicCount())
	for _, topic := range t.Topics {
		labels = append(labels, topic.Label)
		values = append(values, topic.Value)
	}
	labels = append(labels, t.CustomTopicLabel)
	values = append(values, models.CustomTopic)

	for i, label := range labels {
		prefix := "  "
		if i == m.cursor && m.focus == focusList {
			prefix = cursorStyle.Render("> ")
		}
		if values[i] == m.session.Topic {
			label = selectedStyle.Render("● " + label)
		} else {
			label = "○ " + label
		}
		b.WriteString(prefix + label + "\n")
	}

	if m.session.Topic == models.CustomTopic || m.focus == focusCustom {
		if m.focus == focusCustom {
			b.WriteString("  " + m.custom.View() + "\n")
		} else {
			b.WriteString("  " + mutedStyle.Render(m.session.CustomTopic) + "\n")
		}
	}

	b.WriteString(headingStyle.Render(t.ChooseStance))
	b.WriteString("\n")
	pro, con := stanceStyle, stanceStyle
	switch m.session.Stance {
	case models.StancePro:
		pro = proStyle
	case models.StanceCon:
		con = conStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		pro.Render("[p] "+t.StancePro), "  ", con.Render("[c] "+t.StanceCon)))
	return b.String()
}

func (m Model) renderMessages() string {
	t := m.ui()
	width := m.width * 3 / 4
	if width < 20 {
		width = 20
	}
	var lines []string
	for _, msg := range m.session.Messages {
		text := wordwrap.String(msg.Text, width)
		if msg.Author == models.AuthorUser {
			bubble := userBubble.Render(text)
			lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, mutedStyle.Render(t.You)))
			lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble))
		} else {
			lines = append(lines, mutedStyle.Render(t.Opponent))
			lines = append(lines, aiBubble.Render(text))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDebate() string {
	t := m.ui()
	var b strings.Builder
	b.WriteString(headingStyle.Render(t.TopicHeading+" ") + selectedStyle.Render(m.session.ResolvedTopic()))
	b.WriteString("\n\n")
	b.WriteString(m.chat.View())
	b.WriteString("\n")
	if m.session.IsLoading {
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render(t.Thinking))
	} else {
		b.WriteString(m.composer.View())
	}
	return b.String()
}

func (m Model) renderReport() string {
	t := m.ui()
	var b strings.Builder

	report := m.session.Report
	switch {
	case report == nil:
		b.WriteString(mutedStyle.Render(t.ReportPending))
	case report.IsStructured():
		e := report.Evaluation
		b.WriteString(headingStyle.Render(t.ReportTitle))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s  %s %d/10\n", t.ScoreLabel, m.gauge.ViewAs(float64(e.PersuasivenessScore)/10), e.PersuasivenessScore))
		b.WriteString(m.card(t.StrongestArg, e.StrongestArgument))
		b.WriteString(m.card(t.WeakPoint, e.WeakPoint.DetectedFlaw+"\n\n"+e.WeakPoint.Suggestion))
		b.WriteString(m.card(t.GeneralComment, e.GeneralComment))
	default:
		b.WriteString(errorStyle.Render(t.ReportError))
		b.WriteString("\n")
		b.WriteString(t.ReportRawIntro)
		b.WriteString("\n")
		b.WriteString(rawStyle.Render(m.wrap(report.RawText)))
		b.WriteString("\n")
	}

	if m.session.ArgumentMap != "" {
		b.WriteString(m.card(t.ArgumentMap, m.session.ArgumentMap))
	} else if m.session.IsLoading {
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render(t.Thinking) + "\n")
	}
	return b.String()
}

func (m Model) card(title, body string) string {
	return cardStyle.Render(headingStyle.UnsetMarginTop().Render(title)+"\n"+m.wrap(body)) + "\n"
}

func (m Model) help() string {
	t := m.ui()
	switch m.session.Screen {
	case models.ScreenTopic:
		if m.focus == focusCustom {
			return "enter: ok • esc: back"
		}
		return fmt.Sprintf("↑/↓: %s • enter • p/c • l: tr/en • s: %s • q", t.TopicPlaceholder, t.StartDebate)
	case models.ScreenDebate:
		return fmt.Sprintf("enter: %s • ctrl+e: %s • ctrl+n: %s • ctrl+c", t.Send, t.EndDebate, t.NewDebate)
	default:
		return fmt.Sprintf("m: %s • n: %s • q", t.BuildMap, t.NewDebate)
	}
}
