package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/progression"
)

const (
	iconStar   = "★"
	iconTrophy = "🏆"
	iconCheck  = "✓"
	iconCross  = "✗"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

// theme holds styles bound to one writer's renderer, so output to a pipe
// or buffer carries no escape codes.
type theme struct {
	title lipgloss.Style
	key   lipgloss.Style
	muted lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	gold  lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		title: r.NewStyle().Bold(true).Foreground(cAccent),
		key:   r.NewStyle().Bold(true).Foreground(cPrimary),
		muted: r.NewStyle().Foreground(cMuted),
		good:  r.NewStyle().Bold(true).Foreground(cGood),
		warn:  r.NewStyle().Bold(true).Foreground(cWarn),
		bad:   r.NewStyle().Bold(true).Foreground(cBad),
		gold:  r.NewStyle().Bold(true).Foreground(cGold),
	}
}

func (t theme) heading(icon, title string) string {
	if icon != "" {
		icon += " "
	}
	return t.title.Render(icon + title)
}

func (t theme) labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", t.key.Render(label+":"), value)
}

func (t theme) notice(kind, message string) string {
	switch kind {
	case "success":
		return t.good.Render(iconStar) + " " + message
	case "warning":
		return t.warn.Render("!") + " " + message
	case "error":
		return t.bad.Render(iconCross) + " " + message
	default:
		return t.muted.Render("•") + " " + message
	}
}

func (t theme) mark(ok bool) string {
	if ok {
		return t.good.Render(iconCheck)
	}
	return t.bad.Render(iconCross)
}

var skillCaser = cases.Title(language.Turkish)

// skillTitle renders a skill name for display. Stored names keep their
// case; only the display is titled, with Turkish casing rules.
func skillTitle(skill string) string {
	return skillCaser.String(skill)
}

const barWidth = 20

func progressBar(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

func levelLine(l progression.Level) string {
	return fmt.Sprintf("Lv %d %s %d/%d XP (total %d)",
		l.Level, progressBar(l.ProgressPercent), l.CurrentXP, l.NextLevelXP, l.TotalXP)
}

// renderStatus writes the progression summary.
func renderStatus(w io.Writer, st gameapi.Status) error {
	t := newTheme(w)
	var b strings.Builder

	fmt.Fprintln(&b, t.heading(iconStar, "Progress"))
	fmt.Fprintln(&b, t.labelValue("Overall", levelLine(st.Overall)))
	if len(st.Skills) == 0 {
		fmt.Fprintln(&b, t.muted.Render("No skills yet. Log an action to start."))
	}
	for _, s := range st.Skills {
		fmt.Fprintln(&b, "  "+t.labelValue(skillTitle(s.Skill), levelLine(s.Level)))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, t.heading(iconTrophy, "Prestige"))
	fmt.Fprintln(&b, t.labelValue("Points", t.gold.Render(fmt.Sprint(st.Prestige))))
	fmt.Fprintln(&b, t.labelValue("Tier", fmt.Sprintf("%s %s", st.Tier.Icon, st.Tier.Name)))
	fmt.Fprintln(&b, t.labelValue("Achievements", fmt.Sprintf("%d/%d", st.Earned, st.Total)))

	_, err := io.WriteString(w, b.String())
	return err
}
