package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/service"
)

func (a *App) openForm(w *service.FormWorkflow) {
	a.closeModal()
	a.form = w
	d := w.Draft()
	a.formInput = fieldSet{}
	if w.Mode() == service.FormCreate {
		a.formInput.add("empresa", "Empresa (id)", "id da empresa", d.EmpresaID)
		a.formInput.add("numero", "Número", "número do contrato", d.Numero)
	}
	a.formInput.add("bank", "Banco", "banco", d.Bank)
	a.formInput.add("balance", "Saldo", "0,00", d.Balance)
	a.formInput.add("cet", "CET (%)", "0,00", d.CET)
	a.formInput.add("due", "Vencimento", "AAAA-MM-DD", d.DueDate)
	a.modal = modalForm
}

func (a *App) draftFromInputs() service.ContractDraft {
	return service.ContractDraft{
		EmpresaID: a.formInput.value("empresa"),
		Numero:    a.formInput.value("numero"),
		Bank:      a.formInput.value("bank"),
		Balance:   a.formInput.value("balance"),
		CET:       a.formInput.value("cet"),
		DueDate:   a.formInput.value("due"),
	}
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := a.form
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closeModal()
		return a, nil
	case key.Matches(msg, a.keys.Next):
		a.formInput.move(1)
		return a, nil
	case key.Matches(msg, a.keys.Prev):
		a.formInput.move(-1)
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		if !w.CanSubmit() {
			return a, nil
		}
		if err := w.SetDraft(a.draftFromInputs()); err != nil {
			return a, nil
		}
		in, err := w.Begin()
		if err != nil {
			return a, nil
		}
		return a, a.runForm(w, in)
	}
	if w.Status().Pending() {
		return a, nil
	}
	return a, a.formInput.update(msg)
}

// onFormDone closes the dialog and reloads only when the save went through.
func (a *App) onFormDone(msg formDoneMsg) tea.Cmd {
	if a.form == nil || a.form.Token() != msg.token {
		a.logger.Debug("stale form result dropped", "token", msg.token)
		return nil
	}
	a.form.Finish(msg.err)
	if !a.form.Status().Succeeded() {
		return nil
	}
	a.closeModal()
	a.status = "Contrato salvo."
	return a.loadContracts()
}

func (a *App) formView() string {
	w := a.form
	title := "Novo contrato"
	if w.Mode() == service.FormEdit {
		title = "Editar contrato " + w.ContractID()
	}
	lines := []string{headingStyle.Render(title), "", a.formInput.view(), ""}
	st := w.Status()
	switch {
	case st.Pending():
		lines = append(lines, subtleStyle.Render("Salvando..."))
	case st.Failed():
		lines = append(lines, errorStyle.Render(st.Message))
	}
	lines = append(lines, "", helpLine(a.keys.Next, a.keys.Submit, a.keys.Cancel))
	return cardStyle.Render(strings.Join(lines, "\n"))
}
