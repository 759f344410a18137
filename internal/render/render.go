// Package render writes a subscription panel for non-interactive use.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/w31r4/subview/internal/detail"
)

// Table writes the panel rows as a two-column table, followed by the
// call-to-action and the available actions. showIDs adds a leading column
// with the row IDs.
func Table(w io.Writer, p detail.Panel, showIDs bool) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	if showIDs {
		table.SetHeader([]string{"ID", "Field", "Value"})
	} else {
		table.SetHeader([]string{"Field", "Value"})
	}

	for _, r := range p.Rows {
		value := r.Value
		if r.Helper != "" {
			value = value + " (" + r.Helper + ")"
		}
		if showIDs {
			table.Append([]string{r.ID, r.Label, value})
		} else {
			table.Append([]string{r.Label, value})
		}
	}
	table.Render()

	if _, err := fmt.Fprintf(w, "\n%s <%s>\n", p.CallToAction.Text(), p.CallToAction.Link.URL); err != nil {
		return err
	}
	for _, a := range p.Actions {
		if _, err := fmt.Fprintf(w, "%s: %s\n", a.Label, a.Route); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes the panel as indented JSON.
func JSON(w io.Writer, p detail.Panel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
