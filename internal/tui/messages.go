package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/api"
	"github.com/jask/contratos/internal/service"
)

// Results of background commands. Dialog results carry the token of the
// dialog that started them, list results their load sequence; anything that
// no longer matches the current state is dropped.
type (
	loginDoneMsg struct{ err error }

	contractsLoadedMsg struct {
		seq       uint64
		contracts []api.Contract
		err       error
	}

	extratosLoadedMsg struct {
		list  *service.ExtratoList
		seq   uint64
		items []api.Extrato
		err   error
	}

	uploadDoneMsg struct {
		token string
		err   error
	}

	exportDoneMsg struct {
		token string
		path  string
		err   error
	}

	formDoneMsg struct {
		token string
		err   error
	}
)

func (a *App) loginCmd(username, password string) tea.Cmd {
	ctx, boot := a.ctx, a.boot
	return func() tea.Msg {
		return loginDoneMsg{err: boot.Login(ctx, username, password)}
	}
}

func (a *App) loadContracts() tea.Cmd {
	ctx, list := a.ctx, a.contracts
	seq := list.Begin()
	return func() tea.Msg {
		contracts, err := list.Fetch(ctx)
		return contractsLoadedMsg{seq: seq, contracts: contracts, err: err}
	}
}

func (a *App) loadExtratos() tea.Cmd {
	if a.extratos == nil {
		return nil
	}
	ctx, list := a.ctx, a.extratos
	seq := list.Begin()
	return func() tea.Msg {
		items, err := list.Fetch(ctx)
		return extratosLoadedMsg{list: list, seq: seq, items: items, err: err}
	}
}

func (a *App) runUpload(w *service.UploadWorkflow) tea.Cmd {
	ctx, token := a.ctx, w.Token()
	return func() tea.Msg {
		return uploadDoneMsg{token: token, err: w.Run(ctx)}
	}
}

func (a *App) runExport(w *service.ExportWorkflow, req service.ExportRequest) tea.Cmd {
	ctx, token := a.ctx, w.Token()
	return func() tea.Msg {
		path, err := w.Run(ctx, req)
		return exportDoneMsg{token: token, path: path, err: err}
	}
}

func (a *App) runForm(w *service.FormWorkflow, in api.ContractInput) tea.Cmd {
	ctx, token := a.ctx, w.Token()
	return func() tea.Msg {
		return formDoneMsg{token: token, err: w.Run(ctx, in)}
	}
}
