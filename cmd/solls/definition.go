package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/odvcencio/solls/pkg/definition"
	"github.com/odvcencio/solls/pkg/model"
	"github.com/odvcencio/solls/pkg/workspace"
)

func newDefinitionCmd(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "definition <file> <line> <column>",
		Short: "Print the declarations a name refers to",
		Long: `Print the declarations the name at <line>:<column> of <file> refers to.
Line and column are 1-based; columns count UTF-16 code units.
Exits with status 2 when no definition is found: the position names
nothing resolvable, lies outside the file, or the file is not part of the
workspace. Other failures exit with status 1.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			file, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Wrapf(err, "resolve %s", args[0])
			}

			opts, err := a.cfg.WorkspaceOptions("")
			if err != nil {
				return err
			}
			ws, err := workspace.New(opts)
			if err != nil {
				return err
			}
			prog, err := ws.Rebuild(cmd.Context())
			if err != nil {
				return err
			}

			locs, err := definition.Locate(prog, workspace.PathToURI(file), pos)
			if noDefinition(err) {
				return exitCodeError{code: 2, err: err}
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return emitJSON(cmd.OutOrStdout(), locs)
			}
			return printLocations(cmd.OutOrStdout(), ws.Root(), locs)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit LSP locations as JSON")
	return cmd
}

// noDefinition reports whether err means the request found nothing, as
// opposed to the command failing.
func noDefinition(err error) bool {
	return errors.Is(err, model.ErrUnresolved) ||
		errors.Is(err, model.ErrOutOfRange) ||
		errors.Is(err, definition.ErrUnknownDocument)
}

func parsePosition(line, column string) (model.Position, error) {
	l, err := strconv.Atoi(line)
	if err != nil || l < 1 {
		return model.Position{}, errors.Newf("line must be a positive number, got %q", line)
	}
	c, err := strconv.Atoi(column)
	if err != nil || c < 1 {
		return model.Position{}, errors.Newf("column must be a positive number, got %q", column)
	}
	return model.Position{Line: l - 1, Character: c - 1}, nil
}

// printLocations writes one path:line:column per location, 1-based and
// relative to root when inside it.
func printLocations(w io.Writer, root string, locs []protocol.Location) error {
	for _, loc := range locs {
		p, err := workspace.URIToPath(loc.URI)
		if err != nil {
			return err
		}
		if rel, err := filepath.Rel(root, p); err == nil && filepath.IsLocal(rel) {
			p = rel
		}
		if _, err := fmt.Fprintf(w, "%s:%d:%d\n", filepath.ToSlash(p), loc.Range.Start.Line+1, loc.Range.Start.Character+1); err != nil {
			return err
		}
	}
	return nil
}

func emitJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
