// Package cmd implements the grimoire command tree.
package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/agentstation/grimoire/internal/cmd/output"
	"github.com/agentstation/grimoire/pkg/catalog"
	"github.com/agentstation/grimoire/pkg/collections"
	"github.com/agentstation/grimoire/pkg/daily"
	"github.com/agentstation/grimoire/pkg/events"
	"github.com/agentstation/grimoire/pkg/spells"
	"github.com/agentstation/grimoire/pkg/store"
)

// Deps carries the wired application services every command runs
// against. It is assembled once in the root command's setup.
type Deps struct {
	Store     *store.Store
	Bus       *events.Bus
	Manager   *collections.Manager
	Assembler *catalog.Assembler
	Generator *daily.Generator
	Format    output.Format
	Out       io.Writer
}

var deps *Deps

// SetDeps installs the dependency set the commands use. Tests call this
// directly with fakes.
func SetDeps(d *Deps) {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	deps = d
}

// render writes data through the selected output formatter.
func render(data any) error {
	return output.NewFormatter(deps.Format).Format(deps.Out, data)
}

// renderResult prints a mutation result: the message in table mode, the
// full structure otherwise.
func renderResult(result collections.Result) error {
	if deps.Format == output.FormatTable {
		_, err := io.WriteString(deps.Out, result.Message+"\n")
		return err
	}
	return render(result)
}

// spellRows renders spells as table rows: level label, name, school,
// classes.
func spellRows(list []spells.Spell) output.Data {
	data := output.Data{Headers: []string{"Level", "Name", "School", "Classes"}}
	for _, s := range list {
		data.Rows = append(data.Rows, []string{
			spells.LevelLabel(s.Level),
			s.Name,
			s.SchoolName(),
			strings.Join(s.ClassNames(), ", "),
		})
	}
	return data
}

// renderSpells prints a spell list in the selected format.
func renderSpells(list []spells.Spell) error {
	if deps.Format == output.FormatTable {
		return render(spellRows(list))
	}
	return render(list)
}
