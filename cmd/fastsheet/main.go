package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fastsheet"
	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/columnar"
	"github.com/wippyai/fastsheet/engine"
	"github.com/wippyai/fastsheet/native"
)

func main() {
	os.Exit(cli(os.Args[1:], os.Stdout, os.Stderr))
}

// cli runs the command and returns the process exit code. Deferred
// cleanup such as flushing the logger runs before main exits.
func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fastsheet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file        = fs.String("file", "", "Spreadsheet file (.xlsx, .xlsm, .xls, .csv)")
		sheet       = fs.String("sheet", "", "Sheet name (default: first sheet)")
		header      = fs.Bool("header", false, "Treat the first row as a header")
		lib         = fs.String("lib", "", "WebAssembly decoder artifact or directory (default: native decoder)")
		parquetOut  = fs.String("parquet", "", "Write the table to this Parquet file")
		list        = fs.Bool("list", false, "List sheets and exit")
		interactive = fs.Bool("i", false, "Interactive mode with TUI")
		verbose     = fs.Bool("v", false, "Verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *file == "" && fs.NArg() > 0 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(stderr, "Usage: fastsheet -file <book.xlsx> [-sheet name] [-header] [-lib decoder.wasm]")
		fmt.Fprintln(stderr, "       fastsheet -file <book.xlsx> -list")
		fmt.Fprintln(stderr, "       fastsheet -file <book.xlsx> -parquet out.parquet")
		fmt.Fprintln(stderr, "       fastsheet -file <book.xlsx> -i  (interactive mode)")
		return 1
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer l.Sync()
		fastsheet.SetLogger(l)
	}

	var err error
	switch {
	case *list:
		err = listSheets(stdout, *file)
	case *interactive:
		err = runInteractive(*file, *sheet, *lib, *header)
	default:
		err = run(stdout, stderr, *file, *sheet, *lib, *parquetOut, *header)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func listSheets(w io.Writer, file string) error {
	names, err := native.New(nil).Sheets(file)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

// decoder returns the decoder selected by -lib and a cleanup func.
func decoder(ctx context.Context, lib string) (boundary.Decoder, func(), error) {
	if lib == "" {
		return native.New(nil), func() {}, nil
	}
	eng, err := engine.New(ctx, &engine.Config{SearchPaths: []string{lib}})
	if err != nil {
		return nil, nil, err
	}
	return eng, func() { eng.Close(ctx) }, nil
}

// resolveSheet picks the first sheet when none was named.
func resolveSheet(file, sheet string) (string, error) {
	if sheet != "" {
		return sheet, nil
	}
	names, err := native.New(nil).Sheets(file)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%s has no sheets", file)
	}
	return names[0], nil
}

func open(ctx context.Context, file, sheet, lib string, header bool) (*fastsheet.Table, error) {
	sheet, err := resolveSheet(file, sheet)
	if err != nil {
		return nil, err
	}
	dec, closeDec, err := decoder(ctx, lib)
	if err != nil {
		return nil, err
	}
	defer closeDec()
	return fastsheet.Open(ctx, file, sheet, &fastsheet.Options{Header: header, Decoder: dec})
}

func run(stdout, stderr io.Writer, file, sheet, lib, parquetOut string, header bool) error {
	ctx := context.Background()

	t, err := open(ctx, file, sheet, lib, header)
	if err != nil {
		return err
	}

	if parquetOut != "" {
		f, err := os.Create(parquetOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", parquetOut, err)
		}
		if err := columnar.WriteParquet(t, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %d rows x %d columns to %s\n", t.Height(), t.Width(), parquetOut)
		return nil
	}

	width := 0
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}
	printTable(stdout, t, width)
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// printTable writes t as aligned columns. A positive maxWidth shrinks
// the widest columns until each line fits.
func printTable(w io.Writer, t *fastsheet.Table, maxWidth int) {
	var lines [][]string
	hdr, hasHeader := t.Header()
	if hasHeader {
		lines = append(lines, hdr.Strings())
	}
	for _, r := range t.Rows() {
		lines = append(lines, r.Strings())
	}

	widths := make([]int, t.Width())
	for _, l := range lines {
		for i, s := range l {
			widths[i] = max(widths[i], lipgloss.Width(s))
		}
	}
	fit(widths, maxWidth)

	for n, l := range lines {
		cells := make([]string, len(l))
		for i, s := range l {
			cells[i] = pad(truncate(s, widths[i]), widths[i])
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if hasHeader && n == 0 {
			line = headerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d rows x %d columns\n", t.Height(), t.Width())
}

// fit narrows the widest column one cell at a time until the columns
// and their separators fit in maxWidth. Columns never go below 3 cells.
func fit(widths []int, maxWidth int) {
	if maxWidth <= 0 || len(widths) == 0 {
		return
	}
	total := func() int {
		sum := 2 * (len(widths) - 1)
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > maxWidth {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			return
		}
		widths[widest]--
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
