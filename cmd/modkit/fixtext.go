// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"modkit-cli/internal/issue"
	"modkit-cli/internal/textenc"

	"github.com/spf13/cobra"
)

type fixTextOptions struct {
	in    string
	out   string
	wrong string
	right string
}

func newFixTextCommand(app *App) *cobra.Command {
	opts := fixTextOptions{}
	cmd := &cobra.Command{
		Use:   "fix-text [text...]",
		Short: "Repair Japanese text that was decoded with the wrong code page",
		Long: `Repair mojibake: Shift-JIS text that some tool decoded as CP437.

Each argument is repaired and printed on its own line. With --in, the file is
repaired line by line: lines that cannot be repaired are kept as they are, so
a file mixing good and garbled text is safe to process. With neither, stdin
is read.`,
		Example: `  modkit fix-text "âeâXâg"
  modkit fix-text --in dump.txt --out fixed.txt
  modkit fix-text --from cp1252 --to euc-jp < garbled.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fixText(cmd.InOrStdin(), args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "file to repair line by line")
	cmd.Flags().StringVar(&opts.out, "out", "", "write the repaired text here instead of stdout")
	cmd.Flags().StringVar(&opts.wrong, "from", string(textenc.CP437), "encoding the text was wrongly decoded with")
	cmd.Flags().StringVar(&opts.right, "to", string(textenc.CP932), "encoding the bytes were really written in")
	return cmd
}

func (a *App) fixText(stdin io.Reader, args []string, opts fixTextOptions) error {
	r, err := newRecoverer(opts.wrong, opts.right)
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	if opts.in != "" && len(args) > 0 {
		return &ExitError{Code: 2, Err: errors.New("pass either text arguments or --in, not both")}
	}

	if len(args) > 0 {
		var out strings.Builder
		for _, arg := range args {
			fixed, err := r.Recover(arg)
			if err != nil {
				return a.fail(issue.WrapWithContext(err, "repair text", arg), glamourStyle(nil))
			}
			out.WriteString(fixed)
			out.WriteString("\n")
		}
		return a.writeFixed(opts.out, out.String())
	}

	var data []byte
	if opts.in != "" {
		data, err = os.ReadFile(opts.in)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return a.fail(issue.WrapWithContext(err, "read text", opts.in), glamourStyle(nil))
	}

	fixed, report := r.RecoverLines(string(data))
	for line, reason := range report.Kept {
		slog.Debug("line kept as is", "line", line, "reason", reason)
	}
	if err := a.writeFixed(opts.out, fixed); err != nil {
		return err
	}
	if opts.out != "" {
		fmt.Fprintf(a.stdout, "%s %d line(s) repaired, %d kept: %s\n",
			markSucceeded, len(report.Fixed), len(report.Kept), PathStyle.Render(opts.out))
	}
	return nil
}

func newRecoverer(wrong, right string) (*textenc.Recoverer, error) {
	w, err := textenc.Lookup(wrong)
	if err != nil {
		return nil, err
	}
	t, err := textenc.Lookup(right)
	if err != nil {
		return nil, err
	}
	return textenc.NewRecoverer(w, t), nil
}

func (a *App) writeFixed(path, text string) error {
	if path == "" {
		_, err := io.WriteString(a.stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return a.fail(issue.WrapWithContext(err, "write repaired text", path), glamourStyle(nil))
	}
	return nil
}
