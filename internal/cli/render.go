package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/tabsplit/internal/ledger"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#6C7A89")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// Breakdown is the presentation form of a snapshot. Amounts are rounded to
// two decimals here and nowhere earlier.
type Breakdown struct {
	Currency      string            `json:"currency"`
	Discount      float64           `json:"discount_percent"`
	TotalBill     float64           `json:"total_bill"`
	TotalDiscount float64           `json:"total_discount"`
	Participants  []ParticipantLine `json:"participants"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// ParticipantLine is one participant's total and itemized shares.
type ParticipantLine struct {
	Name   string      `json:"name"`
	Total  float64     `json:"total"`
	Shares []ShareLine `json:"shares"`
}

// ShareLine is one item in a participant's breakdown.
type ShareLine struct {
	Item       string  `json:"item"`
	Amount     float64 `json:"amount"`
	Portions   int     `json:"portions"`
	Discounted bool    `json:"discounted"`
}

// NewBreakdown builds the presentation form of snap.
func NewBreakdown(snap ledger.Snapshot, currency string) Breakdown {
	b := Breakdown{
		Currency:      currency,
		Discount:      snap.DiscountPercent,
		TotalBill:     round2(snap.TotalBill),
		TotalDiscount: round2(snap.TotalDiscount),
		Participants:  make([]ParticipantLine, 0, len(snap.Participants)),
	}

	for _, p := range snap.Participants {
		line := ParticipantLine{
			Name:   p.Name,
			Total:  round2(snap.MemberTotals[p.ID]),
			Shares: make([]ShareLine, 0, len(snap.MemberShares[p.ID])),
		}
		for _, share := range snap.MemberShares[p.ID] {
			line.Shares = append(line.Shares, ShareLine{
				Item:       share.ItemName,
				Amount:     round2(share.Amount),
				Portions:   share.Portions,
				Discounted: share.Discounted,
			})
		}
		b.Participants = append(b.Participants, line)
	}

	for _, w := range snap.Warnings {
		if w.Over() {
			b.Warnings = append(b.Warnings, fmt.Sprintf("%s: %d of %d portions allocated, exceeds the total", w.ItemName, w.Allocated, w.Total))
		} else {
			b.Warnings = append(b.Warnings, fmt.Sprintf("%s: %d of %d portions allocated, not all portions allocated", w.ItemName, w.Allocated, w.Total))
		}
	}
	return b
}

// WriteJSON writes b as indented JSON.
func (b Breakdown) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Render formats b for a terminal.
func (b Breakdown) Render() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Bill breakdown"))
	sb.WriteString("\n\n")

	for _, p := range b.Participants {
		sb.WriteString(nameStyle.Render(p.Name))
		sb.WriteString("  ")
		sb.WriteString(b.money(p.Total))
		sb.WriteString("\n")
		if len(p.Shares) == 0 {
			sb.WriteString(mutedStyle.Render("  nothing consumed"))
			sb.WriteString("\n")
		}
		for _, s := range p.Shares {
			detail := ""
			if s.Portions > 1 {
				detail = fmt.Sprintf(" ×%d", s.Portions)
			}
			if s.Discounted {
				detail += " (discounted)"
			}
			sb.WriteString(fmt.Sprintf("  %s %s%s\n", s.Item, b.money(s.Amount), mutedStyle.Render(detail)))
		}
	}

	summary := fmt.Sprintf("Total %s", b.money(b.TotalBill))
	if b.Discount > 0 {
		summary += fmt.Sprintf("\nDiscount %g%% saves %s", b.Discount, b.money(b.TotalDiscount))
	}
	sb.WriteString("\n")
	sb.WriteString(boxStyle.Render(summary))
	sb.WriteString("\n")

	for _, w := range b.Warnings {
		sb.WriteString(warningStyle.Render("! " + w))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b Breakdown) money(amount float64) string {
	return fmt.Sprintf("%s%.2f", b.Currency, amount)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
