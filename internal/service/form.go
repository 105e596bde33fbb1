package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/contratos/internal/api"
)

const formFallback = "Erro ao salvar contrato."

// ContractWriter creates and updates contracts.
type ContractWriter interface {
	CreateContract(ctx context.Context, in api.ContractInput) error
	UpdateContract(ctx context.Context, id string, in api.ContractInput) error
}

// FormMode tells create from edit.
type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

// ContractDraft is the text the user typed. EmpresaID and Numero are only
// used when creating.
type ContractDraft struct {
	EmpresaID string
	Numero    string
	Bank      string
	Balance   string
	CET       string
	DueDate   string
}

// DraftFrom fills a draft from an existing contract. The company/number pair
// is never backfilled.
func DraftFrom(c api.Contract) ContractDraft {
	return ContractDraft{
		Bank:    c.Bank,
		Balance: decimal.NewFromFloat(c.Balance).String(),
		CET:     decimal.NewFromFloat(c.CET).String(),
		DueDate: c.DueDate.String(),
	}
}

// Input converts the draft to a request body.
func (d ContractDraft) Input(mode FormMode) (api.ContractInput, error) {
	in := api.ContractInput{Bank: strings.TrimSpace(d.Bank)}
	if mode == FormCreate {
		in.EmpresaID = strings.TrimSpace(d.EmpresaID)
		in.Numero = strings.TrimSpace(d.Numero)
		if in.EmpresaID == "" || in.Numero == "" {
			return api.ContractInput{}, invalidDraft("Informe empresa e número do contrato.")
		}
	}
	if in.Bank == "" {
		return api.ContractInput{}, invalidDraft("Informe o banco.")
	}
	balance, err := parseDecimal(d.Balance)
	if err != nil {
		return api.ContractInput{}, invalidDraft("Saldo inválido.")
	}
	cet, err := parseDecimal(d.CET)
	if err != nil {
		return api.ContractInput{}, invalidDraft("CET inválido.")
	}
	due, err := api.ParseDate(d.DueDate)
	if err != nil {
		return api.ContractInput{}, invalidDraft("Vencimento inválido (AAAA-MM-DD).")
	}
	in.Balance = balance.InexactFloat64()
	in.CET = cet.InexactFloat64()
	in.DueDate = due
	return in, nil
}

func invalidDraft(message string) error {
	return &SubmissionError{Op: "save contract", Message: message}
}

// parseDecimal accepts "1234.56" and the Brazilian "1.234,56". Once a comma
// is present it is the decimal separator, so a dot after it is rejected.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if comma := strings.LastIndex(s, ","); comma >= 0 {
		if strings.LastIndex(s, ".") > comma {
			return decimal.Decimal{}, fmt.Errorf("ambiguous decimal %q", s)
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// FormWorkflow is one open create/edit dialog. It succeeds only on a 2xx
// answer; the caller closes the dialog and reloads the list then, and keeps
// the dialog open with the message otherwise.
type FormWorkflow struct {
	writer     ContractWriter
	logger     *log.Logger
	token      string
	mode       FormMode
	contractID string
	draft      ContractDraft
	status     Status
}

// NewCreateForm opens an empty draft.
func NewCreateForm(writer ContractWriter, logger *log.Logger) *FormWorkflow {
	return &FormWorkflow{
		writer: writer,
		logger: orDiscard(logger),
		token:  uuid.NewString(),
		mode:   FormCreate,
		status: idle(),
	}
}

// NewEditForm opens a draft pre-filled from c.
func NewEditForm(writer ContractWriter, c api.Contract, logger *log.Logger) *FormWorkflow {
	return &FormWorkflow{
		writer:     writer,
		logger:     orDiscard(logger),
		token:      uuid.NewString(),
		mode:       FormEdit,
		contractID: c.ID,
		draft:      DraftFrom(c),
		status:     idle(),
	}
}

func (w *FormWorkflow) Token() string        { return w.token }
func (w *FormWorkflow) Mode() FormMode       { return w.mode }
func (w *FormWorkflow) ContractID() string   { return w.contractID }
func (w *FormWorkflow) Draft() ContractDraft { return w.draft }
func (w *FormWorkflow) Status() Status       { return w.status }

// SetDraft replaces the draft text.
func (w *FormWorkflow) SetDraft(d ContractDraft) error {
	if w.status.Pending() {
		return ErrBusy
	}
	if w.status.Succeeded() {
		return ErrFinished
	}
	w.draft = d
	return nil
}

// CanSubmit is true unless a save is in flight or already done.
func (w *FormWorkflow) CanSubmit() bool {
	return !w.status.Pending() && !w.status.Succeeded()
}

// Begin validates the draft and moves to pending. An invalid draft fails the
// workflow with a message and sends nothing.
func (w *FormWorkflow) Begin() (api.ContractInput, error) {
	if w.status.Pending() {
		return api.ContractInput{}, ErrBusy
	}
	if w.status.Succeeded() {
		return api.ContractInput{}, ErrFinished
	}
	in, err := w.draft.Input(w.mode)
	if err != nil {
		w.status = failed(Message(err, formFallback))
		return api.ContractInput{}, err
	}
	w.status = pending()
	return in, nil
}

// Run sends the create or update.
func (w *FormWorkflow) Run(ctx context.Context, in api.ContractInput) error {
	var err error
	if w.mode == FormEdit {
		err = w.writer.UpdateContract(ctx, w.contractID, in)
	} else {
		err = w.writer.CreateContract(ctx, in)
	}
	if err != nil {
		return submissionError("save contract", err, formFallback)
	}
	return nil
}

// Finish records the outcome of Run. It is a no-op unless pending.
func (w *FormWorkflow) Finish(err error) {
	if !w.status.Pending() {
		return
	}
	if err != nil {
		w.logger.Warn("save contract failed", "id", w.contractID, "err", err)
		w.status = failed(Message(err, formFallback))
		return
	}
	w.logger.Info("contract saved", "id", w.contractID, "mode", w.mode)
	w.status = succeeded()
}

// Submit validates, sends and records the outcome synchronously.
func (w *FormWorkflow) Submit(ctx context.Context) error {
	in, err := w.Begin()
	if err != nil {
		return err
	}
	err = w.Run(ctx, in)
	w.Finish(err)
	if err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	return nil
}
