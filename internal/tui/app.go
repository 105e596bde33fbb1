// Package tui is the contracts console: a bubbletea program over the service
// workflows. Network work runs in commands; Update is the only writer of
// view state.
package tui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jask/contratos/internal/config"
	"github.com/jask/contratos/internal/service"
)

// Backend is what the console needs from the contracts API.
type Backend interface {
	service.ContractSource
	service.ContractWriter
	service.ExtratoSource
	service.ExtratoUploader
	service.ReportSource
}

type screen string

const (
	screenLogin     screen = "login"
	screenContracts screen = "contracts"
	screenExtratos  screen = "extratos"
)

type modalState string

const (
	modalNone   modalState = ""
	modalUpload modalState = "upload"
	modalExport modalState = "export"
	modalForm   modalState = "form"
)

const sessionExpired = "Sessão expirada. Entre novamente."

// App ties the screens and dialogs together.
type App struct {
	ctx     context.Context
	cfg     config.Config
	backend Backend
	boot    *service.Bootstrap
	logger  *log.Logger
	keys    keyMap

	screen screen
	modal  modalState
	width  int
	height int
	status string
	alert  string

	login        fieldSet
	loginPending bool
	loginErr     string

	contracts   *service.ContractList
	table       table.Model
	filters     fieldSet
	filtering   bool
	filterErr   string
	extratos    *service.ExtratoList
	extratoBank string

	upload      *service.UploadWorkflow
	uploadInput fieldSet
	export      *service.ExportWorkflow
	exportInput fieldSet
	form        *service.FormWorkflow
	formInput   fieldSet
}

func New(ctx context.Context, cfg config.Config, backend Backend, boot *service.Bootstrap, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &App{
		ctx:       ctx,
		cfg:       cfg,
		backend:   backend,
		boot:      boot,
		logger:    logger,
		keys:      defaultKeys(),
		contracts: service.NewContractList(backend, logger),
		table:     newContractTable(),
	}
	a.resetFilters()
	if boot.Authenticated() {
		a.screen = screenContracts
	} else {
		a.toLogin("")
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.screen == screenContracts {
		return a.loadContracts()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.table.SetHeight(max(3, msg.Height-12))
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case loginDoneMsg:
		cmd = a.onLoginDone(msg)
	case contractsLoadedMsg:
		if a.contracts.Apply(msg.seq, msg.contracts, msg.err) {
			a.refreshTable()
		}
	case extratosLoadedMsg:
		if msg.list == a.extratos {
			msg.list.Apply(msg.seq, msg.items, msg.err)
		}
	case uploadDoneMsg:
		cmd = a.onUploadDone(msg)
	case exportDoneMsg:
		a.onExportDone(msg)
	case formDoneMsg:
		cmd = a.onFormDone(msg)
	}

	// Any call can have cost us the credential.
	if a.screen != screenLogin && !a.boot.Authenticated() {
		a.logger.Info("session lost, back to login")
		a.toLogin(sessionExpired)
		return a, nil
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	// The alert blocks everything until dismissed.
	if a.alert != "" {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.alert = ""
		}
		return a, nil
	}
	switch a.modal {
	case modalUpload:
		return a.updateUpload(msg)
	case modalExport:
		return a.updateExport(msg)
	case modalForm:
		return a.updateForm(msg)
	}
	switch a.screen {
	case screenLogin:
		return a.updateLogin(msg)
	case screenExtratos:
		return a.updateExtratos(msg)
	default:
		return a.updateContracts(msg)
	}
}

// toLogin drops every dialog and all fetched data and shows the login form.
func (a *App) toLogin(notice string) {
	a.screen = screenLogin
	a.closeModal()
	a.alert = ""
	a.status = ""
	a.extratos = nil
	a.contracts.Apply(a.contracts.Begin(), nil, nil)
	a.contracts.ClearFilters()
	a.resetFilters()
	a.refreshTable()
	a.login = newLoginFields()
	a.loginPending = false
	a.loginErr = notice
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.upload = nil
	a.export = nil
	a.form = nil
}

func (a *App) View() string {
	var body, help string
	switch a.screen {
	case screenLogin:
		body, help = a.loginView(), helpLine(a.keys.Next, a.keys.Submit, a.keys.ForceQuit)
	case screenExtratos:
		body, help = a.extratosView(), helpLine(a.keys.Upload, a.keys.Reload, a.keys.Back, a.keys.Quit)
	default:
		body, help = a.contractsView(), a.contractsHelp()
	}

	parts := []string{titleStyle.Render("Contratos"), "", body}
	if a.status != "" {
		parts = append(parts, statusStyle.Render(a.status))
	}
	parts = append(parts, "", help)
	view := lipgloss.JoinVertical(lipgloss.Left, parts...)

	var card string
	switch a.modal {
	case modalUpload:
		card = a.uploadView()
	case modalExport:
		card = a.exportView()
	case modalForm:
		card = a.formView()
	}
	if card != "" {
		view = overlayCentered(view, card, a.width, a.height)
	}
	if a.alert != "" {
		view = overlayCentered(view, a.alertView(), a.width, a.height)
	}
	return view
}

func (a *App) alertView() string {
	lines := []string{
		errorStyle.Bold(true).Render("Erro"),
		"",
		a.alert,
		"",
		helpLine(a.keys.Submit),
	}
	return alertStyle.Render(strings.Join(lines, "\n"))
}
