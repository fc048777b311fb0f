package agent

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mcpweb/pkg/strings"
)

// renderServiceTable prints the service listing as a table. The VALIDATED
// column only applies to proxied services; mounted ones need no probe.
func renderServiceTable(w io.Writer, services []ServiceInfo) {
	if len(services) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No services registered"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("KIND"),
		text.FgHiCyan.Sprint("RESOURCES"),
		text.FgHiCyan.Sprint("VALIDATED"),
	})

	for _, svc := range services {
		resources := "-"
		if svc.Kind == "mounted" {
			resources = fmt.Sprintf("%d", svc.Resources)
		}
		t.AppendRow(table.Row{svc.Name, svc.Kind, resources, validatedCell(svc.Validated)})
	}

	t.Render()
	fmt.Fprintf(w, "\n%s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprintf("%d", len(services)))
}

func validatedCell(validated *bool) string {
	if validated == nil {
		return "-"
	}
	if *validated {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgRed.Sprint("no")
}

// renderResourceTable prints a service's resource table.
func renderResourceTable(w io.Writer, resources []ResourceEntry) {
	if len(resources) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No resources declared"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ADDRESS"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})

	for _, res := range resources {
		t.AppendRow(table.Row{res.Address, res.Name,
			strings.TruncateDescription(res.Description, strings.DefaultDescriptionMaxLen)})
	}

	t.Render()
}

// renderAddressList prints search results as a numbered list.
func renderAddressList(w io.Writer, addresses []string) {
	if len(addresses) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No matches found"))
		return
	}

	for i, address := range addresses {
		fmt.Fprintf(w, "  %d. %s\n", i+1, address)
	}
	fmt.Fprintf(w, "\n%s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprintf("%d", len(addresses)),
		text.FgHiBlue.Sprint("matches"))
}

// newTable creates a table writer with the standard styling.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}
