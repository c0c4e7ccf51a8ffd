package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datascrub-cli/internal/utils"
)

// report is anything a command can render in every output format. The value
// itself is marshaled for json and yaml.
type report interface {
	Text() string
	Markdown() string
}

// markdownOnly renders Markdown for the text format as well.
type markdownOnly struct {
	value any
	md    func() string
}

func (m markdownOnly) Text() string     { return m.md() }
func (m markdownOnly) Markdown() string { return m.md() }

// outputFlags are the report destination flags.
type outputFlags struct {
	path   string
	format string
}

func (o *outputFlags) bind(c *cobra.Command) {
	c.Flags().StringVarP(&o.path, "output", "o", "", "write the report to this file instead of stdout")
	c.Flags().StringVar(&o.format, "format-out", "", "report format: text|markdown|json|yaml (default from config)")
}

func renderReport(format string, r report) (string, error) {
	var value any = r
	if m, ok := r.(markdownOnly); ok {
		value = m.value
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return r.Text(), nil
	case "markdown", "md":
		return r.Markdown(), nil
	case "json":
		b, err := utils.PrettyJSON(value)
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(b) + "\n", nil
	case "yaml", "yml":
		b, err := yaml.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return string(b), nil
	}
	return "", fmt.Errorf("unsupported --format-out: %s (use text|markdown|json|yaml)", format)
}

// write renders r and sends it to --output or stdout. label names the
// report in the confirmation line.
func (o *outputFlags) write(c *cobra.Command, label string, r report) error {
	format := o.format
	if format == "" {
		format = conf().OutputFormat
	}
	out, err := renderReport(format, r)
	if err != nil {
		return err
	}
	if o.path != "" {
		if err := utils.SafeWriteFile(o.path, []byte(out)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "✓ Wrote %s to %s\n", label, o.path)
		return nil
	}
	fmt.Fprint(c.OutOrStdout(), out)
	return nil
}
