package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/km-arc/go-inject/framework/container"
)

// BindingHeaders are the columns of a binding table.
var BindingHeaders = []string{"Ref", "Component", "Scope", "Dependencies"}

// BindingRows flattens bindings into table rows.
func BindingRows(bindings []container.Binding) [][]string {
	rows := make([][]string, 0, len(bindings))
	for _, b := range bindings {
		component, scope := "-", "-"
		if b.Component != nil {
			component = b.Component.String()
		}
		if b.Scope != nil {
			scope = fmt.Sprint(b.Scope)
		}
		deps := make([]string, len(b.Dependencies))
		for i, d := range b.Dependencies {
			deps[i] = d.String()
		}
		rows = append(rows, []string{b.Ref.String(), component, scope, strings.Join(deps, ", ")})
	}
	return rows
}

// RenderBindings writes bindings to w as a borderless table.
func RenderBindings(w io.Writer, bindings []container.Binding) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(BindingHeaders)
	if err := table.Bulk(BindingRows(bindings)); err != nil {
		return err
	}
	return table.Render()
}
