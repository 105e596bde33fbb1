package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/api"
	"github.com/jask/contratos/internal/service"
)

func (a *App) openExtratos(c api.Contract) tea.Cmd {
	a.extratos = service.NewExtratoList(a.backend, c.ID, a.logger)
	a.extratoBank = c.Bank
	a.screen = screenExtratos
	a.status = ""
	return a.loadExtratos()
}

func (a *App) updateExtratos(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Back):
		a.extratos = nil
		a.screen = screenContracts
		a.status = ""
	case key.Matches(msg, a.keys.Reload):
		return a, a.loadExtratos()
	case key.Matches(msg, a.keys.Upload):
		a.openUpload(a.extratos.ContractID())
	}
	return a, nil
}

func (a *App) extratosView() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("Extratos do contrato %s", a.extratos.ContractID())))
	if a.extratoBank != "" {
		b.WriteString(subtleStyle.Render(" · " + a.extratoBank))
	}
	b.WriteString("\n\n")

	items := a.extratos.Items()
	if len(items) == 0 {
		b.WriteString(subtleStyle.Render("Nenhum extrato importado."))
		return b.String()
	}
	for _, e := range items {
		fmt.Fprintf(&b, "#%-6d %s\n", e.ID, extratoStatus(e.Status))
	}
	return strings.TrimRight(b.String(), "\n")
}

func extratoStatus(s string) string {
	switch strings.ToLower(s) {
	case "processed", "processado", "done", "ok":
		return successStyle.Render(s)
	case "error", "erro", "failed":
		return errorStyle.Render(s)
	default:
		return infoStyle.Render(s)
	}
}
