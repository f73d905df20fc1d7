package viewer

import (
	"strings"

	"github.com/akmonengine/spine/app"
)

// PanelLines renders the debug panel grouped by folder, one line per folder
func PanelLines(a *app.App) []string {
	var lines []string
	var folder string
	var current []string

	for _, e := range a.Controller.Panel() {
		if e.Folder != folder && len(current) > 0 {
			lines = append(lines, folder+": "+strings.Join(current, "  "))
			current = nil
		}
		folder = e.Folder

		item := e.Label + " " + e.Value
		if e.Editable {
			item += " [" + e.Key + "]"
		}
		current = append(current, item)
	}
	if len(current) > 0 {
		lines = append(lines, folder+": "+strings.Join(current, "  "))
	}

	return lines
}
