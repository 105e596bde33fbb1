package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/contratos/internal/api"
	"github.com/jask/contratos/internal/service"
)

func newContractTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Banco", Width: 24},
			{Title: "Saldo", Width: 18},
			{Title: "CET", Width: 10},
			{Title: "Vencimento", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSurface1).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.Foreground(colorBase).Background(colorAccent).Bold(false)
	t.SetStyles(st)
	return t
}

func (a *App) resetFilters() {
	var s fieldSet
	s.add("bank", "Banco", "filtrar por banco", "")
	s.add("due", "Vence até", "AAAA-MM-DD", "")
	s.fields[0].input.Blur()
	a.filters = s
	a.filtering = false
	a.filterErr = ""
}

func (a *App) refreshTable() {
	visible := a.contracts.Visible()
	rows := make([]table.Row, 0, len(visible))
	for _, c := range visible {
		rows = append(rows, table.Row{
			c.ID,
			c.Bank,
			formatMoney(a.cfg.UI.CurrencySymbol, c.Balance),
			formatPercent(c.CET),
			formatDate(c.DueDate, a.cfg.UI.DateFormat),
		})
	}
	a.table.SetRows(rows)
	if c, n := a.table.Cursor(), len(rows); c < 0 || c >= n {
		a.table.SetCursor(max(0, min(c, n-1)))
	}
}

func (a *App) selected() (api.Contract, bool) {
	row := a.table.SelectedRow()
	if len(row) == 0 {
		return api.Contract{}, false
	}
	return a.contracts.Get(row[0])
}

func (a *App) updateContracts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.filtering {
		return a.updateFilters(msg)
	}
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.FilterBank):
		a.focusFilter(0)
	case key.Matches(msg, a.keys.FilterDue):
		a.focusFilter(1)
	case key.Matches(msg, a.keys.ClearFilters):
		a.contracts.ClearFilters()
		a.resetFilters()
		a.refreshTable()
	case key.Matches(msg, a.keys.Reload):
		a.status = ""
		return a, a.loadContracts()
	case key.Matches(msg, a.keys.New):
		a.openForm(service.NewCreateForm(a.backend, a.logger))
	case key.Matches(msg, a.keys.Edit):
		if c, ok := a.selected(); ok {
			a.openForm(service.NewEditForm(a.backend, c, a.logger))
		}
	case key.Matches(msg, a.keys.Upload):
		if c, ok := a.selected(); ok {
			a.openUpload(c.ID)
		}
	case key.Matches(msg, a.keys.Accruals):
		a.openExport(service.NewAccrualsExport(a.backend, a.cfg.Export.Dir, a.logger))
	case key.Matches(msg, a.keys.Transactions):
		a.openExport(service.NewTransactionsExport(a.backend, a.cfg.Export.Dir, a.logger))
	case key.Matches(msg, a.keys.Open):
		if c, ok := a.selected(); ok {
			return a, a.openExtratos(c)
		}
	case key.Matches(msg, a.keys.Logout):
		if err := a.boot.Logout(); err != nil {
			a.logger.Error("logout", "err", err)
		}
		a.toLogin("")
	default:
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) focusFilter(i int) {
	a.filtering = true
	a.filterErr = ""
	a.filters.fields[a.filters.focus].input.Blur()
	a.filters.focus = i
	a.filters.fields[i].input.Focus()
}

// updateFilters edits the filter inputs. The bank filter applies on every
// keystroke; the date applies on enter, once it parses.
func (a *App) updateFilters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.blurFilters()
		return a, nil
	case msg.String() == "tab" || msg.String() == "shift+tab":
		a.focusFilter(1 - a.filters.focus)
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		if err := a.contracts.SetDueBefore(a.filters.value("due")); err != nil {
			a.filterErr = "Data inválida. Use AAAA-MM-DD."
			return a, nil
		}
		a.blurFilters()
		a.refreshTable()
		return a, nil
	}
	cmd := a.filters.update(msg)
	a.contracts.SetBankFilter(a.filters.value("bank"))
	a.refreshTable()
	return a, cmd
}

func (a *App) blurFilters() {
	a.filtering = false
	a.filterErr = ""
	a.filters.fields[a.filters.focus].input.Blur()
}

func (a *App) contractsView() string {
	var b strings.Builder
	b.WriteString(a.filters.view())
	b.WriteByte('\n')
	if a.filterErr != "" {
		b.WriteString(errorStyle.Render(a.filterErr) + "\n")
	}
	b.WriteByte('\n')

	visible := len(a.contracts.Visible())
	switch {
	case len(a.contracts.All()) == 0:
		b.WriteString(subtleStyle.Render("Nenhum contrato."))
	case visible == 0:
		b.WriteString(subtleStyle.Render("Nenhum contrato para os filtros atuais."))
		if hint := a.contracts.ClosestBank(); hint != "" {
			b.WriteString("\n" + warningStyle.Render(fmt.Sprintf("Você quis dizer %q?", hint)))
		}
	default:
		b.WriteString(a.table.View())
		b.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("%d de %d contratos", visible, len(a.contracts.All()))))
	}
	return b.String()
}

func (a *App) contractsHelp() string {
	if a.filtering {
		return helpLine(a.keys.Submit, a.keys.Cancel, a.keys.Next)
	}
	return helpLine(
		a.keys.FilterBank, a.keys.FilterDue, a.keys.ClearFilters, a.keys.New, a.keys.Edit,
		a.keys.Upload, a.keys.Open, a.keys.Accruals, a.keys.Transactions, a.keys.Reload,
		a.keys.Logout, a.keys.Quit,
	)
}
