package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/service"
)

func (a *App) openExport(w *service.ExportWorkflow) {
	a.closeModal()
	a.export = w
	a.exportInput = fieldSet{}
	if w.RequiresCompany() {
		a.exportInput.add("company", "Empresa (id)", "id da empresa", "")
	}
	a.exportInput.add("start", "Data inicial", "AAAA-MM-DD", "")
	a.exportInput.add("end", "Data final", "AAAA-MM-DD", "")
	a.modal = modalExport
}

func (a *App) syncExport() {
	_ = a.export.SetRange(a.exportInput.value("start"), a.exportInput.value("end"))
	if a.export.RequiresCompany() {
		_ = a.export.SetCompany(a.exportInput.value("company"))
	}
}

func (a *App) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.export
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closeModal()
		return a, nil
	case key.Matches(msg, a.keys.Next):
		a.exportInput.move(1)
		return a, nil
	case key.Matches(msg, a.keys.Prev):
		a.exportInput.move(-1)
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		a.syncExport()
		if !w.Ready() {
			return a, nil
		}
		req, err := w.Begin()
		if err != nil {
			return a, nil
		}
		return a, a.runExport(w, req)
	}
	if w.Status().Pending() {
		return a, nil
	}
	cmd := a.exportInput.update(msg)
	a.syncExport()
	return a, cmd
}

// onExportDone reports failures through the blocking alert.
func (a *App) onExportDone(msg exportDoneMsg) {
	if a.export == nil || a.export.Token() != msg.token {
		a.logger.Debug("stale export result dropped", "token", msg.token)
		return
	}
	a.export.Finish(msg.path, msg.err)
	st := a.export.Status()
	if st.Failed() {
		a.alert = st.Message
		return
	}
	a.status = "Arquivo salvo em " + a.export.SavedPath()
}

func (a *App) exportView() string {
	w := a.export
	title := "Exportar juros (CSV)"
	if w.Kind() == service.ExportTransactions {
		title = "Exportar transações"
	}
	lines := []string{headingStyle.Render(title), "", a.exportInput.view(), ""}
	st := w.Status()
	switch {
	case st.Pending():
		lines = append(lines, subtleStyle.Render("Exportando..."))
	case st.Succeeded():
		lines = append(lines, successStyle.Render("Salvo em "+w.SavedPath()))
	case !w.Ready():
		lines = append(lines, subtleStyle.Render("Preencha todos os campos."))
	}
	lines = append(lines, "", helpLine(a.keys.Next, a.keys.Submit, a.keys.Cancel))
	return cardStyle.Render(strings.Join(lines, "\n"))
}
