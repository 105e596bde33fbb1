package service

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/jask/contratos/internal/api"
)

// ExtratoSource lists the statements of a contract.
type ExtratoSource interface {
	ListExtratos(ctx context.Context, contractID string) ([]api.Extrato, error)
}

// ExtratoList is the statement list of one contract. Failures behave like
// contract loads: logged, list emptied.
type ExtratoList struct {
	src        ExtratoSource
	logger     *log.Logger
	contractID string
	items      []api.Extrato
	seq        uint64
	applied    uint64
}

func NewExtratoList(src ExtratoSource, contractID string, logger *log.Logger) *ExtratoList {
	return &ExtratoList{src: src, contractID: contractID, logger: orDiscard(logger)}
}

func (l *ExtratoList) ContractID() string { return l.contractID }

// Begin numbers a new load.
func (l *ExtratoList) Begin() uint64 {
	l.seq++
	return l.seq
}

// Fetch performs the network call only.
func (l *ExtratoList) Fetch(ctx context.Context) ([]api.Extrato, error) {
	items, err := l.src.ListExtratos(ctx, l.contractID)
	if err != nil {
		return nil, &FetchError{Resource: "extratos", Err: err}
	}
	return items, nil
}

// Apply installs the result of load seq, dropping superseded results.
func (l *ExtratoList) Apply(seq uint64, items []api.Extrato, err error) bool {
	if seq < l.applied {
		return false
	}
	l.applied = seq
	if err != nil {
		l.logger.Warn("failed to load extratos", "contract", l.contractID, "err", err)
		l.items = nil
		return true
	}
	l.items = slices.Clone(items)
	return true
}

// Load fetches and applies in one step.
func (l *ExtratoList) Load(ctx context.Context) error {
	seq := l.Begin()
	items, err := l.Fetch(ctx)
	l.Apply(seq, items, err)
	return err
}

func (l *ExtratoList) Items() []api.Extrato {
	return slices.Clone(l.items)
}
