package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contratos/internal/service"
)

func newLoginFields() fieldSet {
	var s fieldSet
	s.add("username", "Usuário", "usuario", "")
	s.add("password", "Senha", "senha", "")
	s.fields[1].input.EchoMode = textinput.EchoPassword
	s.fields[1].input.EchoCharacter = '•'
	return s
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loginPending {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Next):
		a.login.move(1)
		return a, nil
	case key.Matches(msg, a.keys.Prev):
		a.login.move(-1)
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		a.loginPending = true
		a.loginErr = ""
		return a, a.loginCmd(a.login.value("username"), a.login.value("password"))
	}
	return a, a.login.update(msg)
}

func (a *App) onLoginDone(msg loginDoneMsg) tea.Cmd {
	if a.screen != screenLogin {
		return nil
	}
	a.loginPending = false
	if msg.err != nil {
		a.loginErr = service.Message(msg.err, "Falha no login")
		return nil
	}
	a.login = newLoginFields()
	a.loginErr = ""
	a.screen = screenContracts
	return a.loadContracts()
}

func (a *App) loginView() string {
	lines := []string{headingStyle.Render("Entrar"), "", a.login.view(), ""}
	switch {
	case a.loginPending:
		lines = append(lines, subtleStyle.Render("Entrando..."))
	case a.loginErr != "":
		lines = append(lines, errorStyle.Render(a.loginErr))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
