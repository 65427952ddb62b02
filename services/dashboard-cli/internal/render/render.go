package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"envdashboard/services/dashboard-cli/internal/models"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	tagStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginRight(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Printer writes values in the chosen format.
type Printer struct {
	out    io.Writer
	format string
}

// NewPrinter validates format and returns a printer.
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	switch format {
	case "", FormatTable:
		format = FormatTable
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("render: unknown format %q (allowed: table, json, yaml)", format)
	}
	return &Printer{out: out, format: format}, nil
}

// Structured reports whether the printer emits machine-readable output.
func (p *Printer) Structured() bool {
	return p.format != FormatTable
}

// Value encodes v as JSON or YAML. In table mode it falls back to YAML.
func (p *Printer) Value(v interface{}) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Line prints a plain message.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Table prints rows under headers with aligned columns.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cellStyle.Render(style.Render(cell) + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}

	fmt.Fprintln(p.out, line(headers, headerStyle))
	for _, row := range rows {
		fmt.Fprintln(p.out, line(row, lipgloss.NewStyle()))
	}
	if len(rows) == 0 {
		fmt.Fprintln(p.out, mutedStyle.Render("(none)"))
	}
}

// Section prints a heading.
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.out, sectionStyle.Render(title))
}

// Tags prints sensor tags as inline chips.
func (p *Printer) Tags(tags []models.SensorTag) {
	if len(tags) == 0 {
		fmt.Fprintln(p.out, mutedStyle.Render("(no sensors selected)"))
		return
	}
	chips := make([]string, len(tags))
	for i, t := range tags {
		chips[i] = tagStyle.Render(t.Title)
	}
	fmt.Fprintln(p.out, lipgloss.JoinHorizontal(lipgloss.Top, chips...))
}

// Stations prints stations.
func (p *Printer) Stations(stations []models.Station, total *int64) error {
	if p.Structured() {
		return p.Value(stations)
	}
	rows := make([][]string, len(stations))
	for i, s := range stations {
		rows[i] = []string{id(s.ID), s.Name, float(s.Lat), float(s.Lng), float(s.Altitude)}
	}
	p.Table([]string{"ID", "NAME", "LAT", "LNG", "ALTITUDE"}, rows)
	p.total(len(stations), total)
	return nil
}

// Sensors prints sensors.
func (p *Printer) Sensors(sensors []models.Sensor, total *int64) error {
	if p.Structured() {
		return p.Value(sensors)
	}
	rows := make([][]string, len(sensors))
	for i, s := range sensors {
		rows[i] = []string{id(s.ID), id(s.StationID), s.Name, models.GetPositionName(s.Position), s.Group, s.Tag, s.Unit}
	}
	p.Table([]string{"ID", "STATION", "NAME", "POSITION", "GROUP", "TAG", "UNIT"}, rows)
	p.total(len(sensors), total)
	return nil
}

// Records prints data records.
func (p *Printer) Records(records []models.DataRecord, total *int64) error {
	if p.Structured() {
		return p.Value(records)
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{id(r.ID), id(r.SensorID), float(r.Value), timestamp(r.Time)}
	}
	p.Table([]string{"ID", "SENSOR", "VALUE", "TIME"}, rows)
	p.total(len(records), total)
	return nil
}

func (p *Printer) total(shown int, total *int64) {
	if total != nil {
		fmt.Fprintln(p.out, mutedStyle.Render(fmt.Sprintf("%d of %d", shown, *total)))
	}
}

func id(v uint) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatUint(uint64(v), 10)
}

func float(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func timestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
