package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Next      key.Binding
	Prev      key.Binding

	FilterBank   key.Binding
	FilterDue    key.Binding
	ClearFilters key.Binding
	Reload       key.Binding
	New          key.Binding
	Edit         key.Binding
	Upload       key.Binding
	Accruals     key.Binding
	Transactions key.Binding
	Open         key.Binding
	Back         key.Binding
	Logout       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "sair")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "sair")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirmar")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "fechar")),
		Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "próximo")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "anterior")),

		FilterBank:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "banco")),
		FilterDue:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vence até")),
		ClearFilters: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "limpar filtros")),
		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recarregar")),
		New:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "novo")),
		Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		Upload:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "importar extrato")),
		Accruals:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "exportar juros")),
		Transactions: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "exportar transações")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "extratos")),
		Back:         key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "voltar")),
		Logout:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sair da sessão")),
	}
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " · "))
}
