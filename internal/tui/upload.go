package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/service"
)

func (a *App) openUpload(contractID string) {
	a.closeModal()
	a.upload = service.NewUploadWorkflow(a.backend, contractID, a.logger)
	a.uploadInput = fieldSet{}
	a.uploadInput.add("file", "Arquivo", "caminho do extrato", "")
	a.modal = modalUpload
}

func (a *App) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.upload
	switch {
	case key.Matches(msg, a.keys.Cancel):
		if w.CanCancel() {
			a.closeModal()
		}
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		if w.Status().Settled() {
			a.closeModal()
			return a, nil
		}
		if err := w.SetFile(a.uploadInput.value("file")); err != nil || !w.CanSubmit() {
			return a, nil
		}
		if err := w.Begin(); err != nil {
			return a, nil
		}
		return a, a.runUpload(w)
	}
	if !w.Status().Idle() {
		return a, nil
	}
	return a, a.uploadInput.update(msg)
}

func (a *App) onUploadDone(msg uploadDoneMsg) tea.Cmd {
	if a.upload == nil || a.upload.Token() != msg.token {
		a.logger.Debug("stale upload result dropped", "token", msg.token)
		return nil
	}
	a.upload.Finish(msg.err)
	if !a.upload.Status().Succeeded() {
		return nil
	}
	a.status = "Extrato enviado."
	if a.screen == screenExtratos && a.extratos != nil && a.extratos.ContractID() == a.upload.ContractID() {
		return a.loadExtratos()
	}
	return nil
}

func (a *App) uploadView() string {
	w := a.upload
	lines := []string{
		headingStyle.Render("Importar extrato"),
		subtleStyle.Render("Contrato " + w.ContractID()),
		"",
		a.uploadInput.view(),
		"",
	}
	st := w.Status()
	switch {
	case st.Pending():
		lines = append(lines, subtleStyle.Render("Enviando..."))
	case st.Succeeded():
		lines = append(lines, successStyle.Render("Extrato enviado com sucesso."), "", helpLine(a.keys.Submit))
	case st.Failed():
		lines = append(lines, errorStyle.Render(st.Message), "", helpLine(a.keys.Submit))
	default:
		if p := w.FileProblem(); p != "" {
			lines = append(lines, errorStyle.Render(p), "")
		}
		lines = append(lines, helpLine(a.keys.Submit, a.keys.Cancel))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
