// Package cmdlog prints instrument traffic for interactive tools.
package cmdlog

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gotmc/plx"
)

// IsText reports whether s holds only printable characters and common
// whitespace.
func IsText(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	R1Style   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	R2Style   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	ErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HeadStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Describe formats a response for display. Text is quoted, short binary
// replies are quoted and dumped as hex, long binary replies are dumped only.
func Describe(b []byte) string {
	a := strings.TrimRight(string(b), "\r\n")
	switch {
	case len(a) == 0:
		return "<no response>"
	case IsText(a):
		return fmt.Sprintf("[%d] %q", len(a), a)
	case len(a) < 32:
		return fmt.Sprintf("[%d] %q (% 2x)", len(a), a, []byte(a))
	default:
		return fmt.Sprintf("[%d] % 2x", len(a), []byte(a))
	}
}

// Printer runs messages through a session and logs the traffic.
type Printer struct {
	s   *plx.Session
	out *log.Logger
}

// New returns a Printer logging to w.
func New(s *plx.Session, w io.Writer) *Printer {
	return &Printer{s: s, out: log.New(w, "", 0)}
}

// Query sends q, reads the reply and logs failures. The reply is returned
// as received.
func (p *Printer) Query(q string) []byte {
	b, err := p.s.Query(q)
	if err != nil {
		p.out.Printf("query %s: %s", CmdStyle.Render(q), ErrStyle.Render(err.Error()))
	}
	return b
}

// PrintQuery runs Query and logs the reply.
func (p *Printer) PrintQuery(q string) {
	b := p.Query(q)
	if len(strings.TrimRight(string(b), "\r\n")) == 0 {
		p.out.Printf("%s: %s", CmdStyle.Render(q), R1Style.Render(Describe(b)))
		return
	}
	p.out.Printf("%s: %s", CmdStyle.Render(q), R2Style.Render(Describe(b)))
}

// PrintRead asks the instrument to talk and logs whatever arrives.
func (p *Printer) PrintRead() {
	b, err := p.s.Read(p.s.ReadSize())
	if err != nil {
		p.out.Printf("read: %s", ErrStyle.Render(err.Error()))
		return
	}
	p.out.Print(R2Style.Render(Describe(b)))
}

// PrintReadRaw logs a reply the adapter already holds, without asking the
// instrument to talk.
func (p *Printer) PrintReadRaw() {
	b, err := p.s.ReadRaw(p.s.ReadSize())
	if err != nil {
		p.out.Printf("raw read: %s", ErrStyle.Render(err.Error()))
		return
	}
	p.out.Print(R2Style.Render(Describe(b)))
}

// Send sends c without reading.
func (p *Printer) Send(c string) {
	if err := p.s.Send(c); err != nil {
		p.out.Printf("send %s: %s", CmdStyle.Render(c), ErrStyle.Render(err.Error()))
		return
	}
	p.out.Printf("%s()", CmdStyle.Render(c))
}

// PrintScan logs the addresses that answered a scan, or all of them when
// all is set.
func (p *Printer) PrintScan(results plx.ScanResults, all bool) {
	if !all {
		var responding plx.ScanResults
		for _, r := range results {
			if r.Responded {
				responding = append(responding, r)
			}
		}
		results = responding
	}
	if len(results) == 0 {
		p.out.Print(R1Style.Render("no instruments responded"))
		return
	}
	p.out.Print(RenderScan(results))
}

// RenderScan lays out scan results as a table.
func RenderScan(results plx.ScanResults) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "-"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
		case r.Responded:
			status = Describe(r.Response)
		}
		rows = append(rows, []string{strconv.Itoa(r.Address), status})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ADDR", "RESPONSE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeadStyle
			}
			return CellStyle
		}).
		String()
}
