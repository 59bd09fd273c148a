// Package report renders results and client timelines as terminal tables.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"golang.org/x/term"
)

// Placeholder is shown for absent values.
const Placeholder = "—"

// Options controls table rendering.
type Options struct {
	UseColors bool
	Width     int
}

// DetectOptions enables colors only on an interactive stdout and picks up
// the terminal width.
func DetectOptions(noColor bool) Options {
	fd := int(os.Stdout.Fd())
	opts := Options{UseColors: !noColor && term.IsTerminal(fd), Width: 80}
	if width, _, err := term.GetSize(fd); err == nil && width > 0 {
		opts.Width = width
	}
	return opts
}

type palette struct {
	green, red, yellow func(...any) string
}

func newPalette(opts Options) palette {
	if !opts.UseColors {
		return palette{green: fmt.Sprint, red: fmt.Sprint, yellow: fmt.Sprint}
	}
	return palette{
		green:  color.New(color.FgGreen).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
	}
}

// WriteResult prints one evaluated result.
func WriteResult(w io.Writer, result domain.AssessmentResult) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Index", "Value", "Category", "Risk"})

	bmi := []string{"BMI", Placeholder, metrics.NotAvailable, Placeholder}
	if result.BMI != nil {
		bmi = []string{"BMI", formatFloat(result.BMI.Value), result.BMI.Category, result.BMI.Risk}
	}
	whr := []string{"WHR", Placeholder, metrics.NotAvailable, Placeholder}
	if result.WHR != nil {
		whr = []string{"WHR", formatFloat(result.WHR.Value), result.WHR.Category, Placeholder}
	}

	if err := table.Bulk([][]string{bmi, whr}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Profile: %s\n", result.Profile)
	return err
}

// WriteHistory prints a client's timeline followed by the deltas of each
// assessment against the previous one.
func WriteHistory(w io.Writer, client *domain.Client, steps []metrics.Step, names []domain.MeasurementName, opts Options) error {
	if _, err := fmt.Fprintf(w, "%s (#%d), %d assessment(s)\n", client.Name, client.ID, len(steps)); err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}
	if err := writeTimeline(w, steps, opts); err != nil {
		return err
	}

	p := newPalette(opts)
	for _, step := range steps {
		if step.PreviousID == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s vs #%d\n", step.Assessment.TakenAt.Format(time.DateOnly), *step.PreviousID); err != nil {
			return err
		}
		if err := writeDeltas(w, step, names, p); err != nil {
			return err
		}
	}
	return nil
}

func writeTimeline(w io.Writer, steps []metrics.Step, opts Options) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Date", "Weight", "BMI", "BMI category", "WHR", "WHR category", "Notes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	notesWidth := max(opts.Width-90, 12)
	var data [][]string
	for _, step := range steps {
		a := step.Assessment
		row := []string{
			strconv.FormatInt(a.ID, 10),
			a.TakenAt.Format(time.DateOnly),
			measurement(a.Measurements, domain.Weight),
			Placeholder, Placeholder, Placeholder, Placeholder,
			Placeholder,
		}
		if a.Result != nil && a.Result.BMI != nil {
			row[3] = formatFloat(a.Result.BMI.Value)
			row[4] = a.Result.BMI.Category
		}
		if a.Result != nil && a.Result.WHR != nil {
			row[5] = formatFloat(a.Result.WHR.Value)
			row[6] = a.Result.WHR.Category
		}
		if a.Notes != nil && *a.Notes != "" {
			row[7] = truncate(*a.Notes, notesWidth)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeDeltas(w io.Writer, step metrics.Step, names []domain.MeasurementName, p palette) error {
	if len(step.Deltas) == 0 {
		_, err := fmt.Fprintln(w, "No comparable measurements")
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Measurement", "Previous", "Current", "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, name := range names {
		d, ok := step.Deltas[name]
		if !ok {
			continue
		}
		data = append(data, []string{
			string(name),
			formatFloat(d.Previous),
			formatFloat(d.Current),
			formatDelta(d, p),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatDelta marks progress with a green ▲ and regressions with a red ▼,
// whatever the sign of the change.
func formatDelta(d metrics.Delta, p palette) string {
	value := formatFloat(d.Delta)
	if d.Delta > 0 {
		value = "+" + value
	}
	switch {
	case d.Improved:
		return p.green(value + " ▲")
	case d.Delta == 0:
		return p.yellow(value)
	default:
		return p.red(value + " ▼")
	}
}

func measurement(m domain.Measurements, name domain.MeasurementName) string {
	v, ok := m.Value(name)
	if !ok {
		return Placeholder
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
