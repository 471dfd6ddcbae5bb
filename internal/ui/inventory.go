package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/cnc-calculator/internal/project"
)

// ─── Tool Rack Dialog ──────────────────────────────────────

func (a *App) showToolRackDialog() {
	toolList := container.NewVBox()
	var d dialog.Dialog
	var refreshList func()

	refreshList = func() {
		toolList.RemoveAll()

		inv := a.session.Inventory()
		if len(inv.Tools) == 0 {
			toolList.Add(widget.NewLabel("No tools in the rack."))
			return
		}

		header := container.NewGridWithColumns(5,
			widget.NewLabelWithStyle("Name", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Diameter", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Flutes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Material", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
		)
		toolList.Add(header)
		toolList.Add(widget.NewSeparator())

		for _, t := range inv.Tools {
			name := t.Name
			material := t.Material
			if material == "" {
				material = "-"
			}
			row := container.NewGridWithColumns(5,
				widget.NewLabel(t.Name),
				widget.NewLabel(fmt.Sprintf("%.3f mm", t.ToolDiameter)),
				widget.NewLabel(fmt.Sprintf("%d", t.Flutes)),
				widget.NewLabel(material),
				widget.NewButtonWithIcon("Use", theme.ConfirmIcon(), func() {
					a.apply(a.session.UseTool(name))
					if d != nil {
						d.Hide()
					}
				}),
			)
			toolList.Add(row)
		}
	}
	refreshList()

	importBtn := widget.NewButtonWithIcon("Import...", theme.FolderOpenIcon(), func() {
		a.importToolRack(refreshList)
	})

	content := container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Tool Rack", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			importBtn,
		),
		nil, nil, nil,
		container.NewVScroll(toolList),
	)

	d = dialog.NewCustom("Tool Rack", "Close", content, a.window)
	d.Resize(fyne.NewSize(700, 400))
	d.Show()
}

// importToolRack merges tools from a JSON file into the rack. Tools whose ID
// is already in the rack are skipped.
func (a *App) importToolRack(onDone func()) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		inv, err := project.ImportInventory(path, a.session.Inventory())
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to import tool rack: %w", err), a.window)
			return
		}
		a.session.SetInventory(inv)
		if a.toolSelect != nil {
			a.toolSelect.Options = inv.ToolNames()
			a.toolSelect.Refresh()
		}
		if onDone != nil {
			onDone()
		}
		dialog.ShowInformation("Import Complete",
			fmt.Sprintf("Tool rack now holds %d tools.", len(inv.Tools)), a.window)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}
