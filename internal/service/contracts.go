package service

import (
	"context"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/log"

	"github.com/jask/contratos/internal/api"
)

// ContractSource lists contracts.
type ContractSource interface {
	ListContracts(ctx context.Context) ([]api.Contract, error)
}

// Filter narrows the contract table locally; it is never sent to the server.
// A zero DueBefore means no date filter.
type Filter struct {
	Bank      string
	DueBefore api.Date
}

// Match reports whether c passes both filters.
func (f Filter) Match(c api.Contract) bool {
	if f.Bank != "" && !strings.Contains(strings.ToLower(c.Bank), strings.ToLower(f.Bank)) {
		return false
	}
	if !f.DueBefore.IsZero() && (c.DueDate.IsZero() || c.DueDate.After(f.DueBefore)) {
		return false
	}
	return true
}

// FilterContracts returns the contracts that pass f, in input order.
func FilterContracts(contracts []api.Contract, f Filter) []api.Contract {
	out := make([]api.Contract, 0, len(contracts))
	for _, c := range contracts {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// ContractList holds the fetched contracts and the filter inputs. Loads are
// numbered so a slow, superseded fetch cannot overwrite a newer one.
type ContractList struct {
	src       ContractSource
	logger    *log.Logger
	contracts []api.Contract
	filter    Filter
	seq       uint64
	applied   uint64
}

func NewContractList(src ContractSource, logger *log.Logger) *ContractList {
	return &ContractList{src: src, logger: orDiscard(logger)}
}

// Begin numbers a new load.
func (l *ContractList) Begin() uint64 {
	l.seq++
	return l.seq
}

// Fetch performs the network call without touching the list, so it can run
// off the UI loop.
func (l *ContractList) Fetch(ctx context.Context) ([]api.Contract, error) {
	contracts, err := l.src.ListContracts(ctx)
	if err != nil {
		return nil, &FetchError{Resource: "contracts", Err: err}
	}
	return contracts, nil
}

// Apply installs the result of load seq. A failed load empties the list and
// is logged. Results from loads older than the last applied one are dropped;
// Apply reports whether the result was used.
func (l *ContractList) Apply(seq uint64, contracts []api.Contract, err error) bool {
	if seq < l.applied {
		l.logger.Debug("stale contract load dropped", "seq", seq, "applied", l.applied)
		return false
	}
	l.applied = seq
	if err != nil {
		l.logger.Warn("failed to load contracts", "err", err)
		l.contracts = nil
		return true
	}
	l.contracts = slices.Clone(contracts)
	return true
}

// Load fetches and applies in one step.
func (l *ContractList) Load(ctx context.Context) error {
	seq := l.Begin()
	contracts, err := l.Fetch(ctx)
	l.Apply(seq, contracts, err)
	return err
}

// All returns the full fetched collection.
func (l *ContractList) All() []api.Contract {
	return slices.Clone(l.contracts)
}

// Get finds a contract by id.
func (l *ContractList) Get(id string) (api.Contract, bool) {
	for _, c := range l.contracts {
		if c.ID == id {
			return c, true
		}
	}
	return api.Contract{}, false
}

func (l *ContractList) Filter() Filter {
	return l.filter
}

// SetBankFilter sets the bank substring as typed; surrounding spaces are part
// of the match.
func (l *ContractList) SetBankFilter(bank string) {
	l.filter.Bank = bank
}

// SetDueBefore sets the due-date filter from YYYY-MM-DD; "" clears it. An
// unparsable value leaves the filter unchanged.
func (l *ContractList) SetDueBefore(s string) error {
	if strings.TrimSpace(s) == "" {
		l.filter.DueBefore = api.Date{}
		return nil
	}
	d, err := api.ParseDate(s)
	if err != nil {
		return err
	}
	l.filter.DueBefore = d
	return nil
}

func (l *ContractList) ClearFilters() {
	l.filter = Filter{}
}

// Visible is the filtered view, recomputed on every call.
func (l *ContractList) Visible() []api.Contract {
	return FilterContracts(l.contracts, l.filter)
}

// ClosestBank suggests the bank name nearest to the bank filter when that
// filter matches nothing. It returns "" when there is nothing to suggest.
func (l *ContractList) ClosestBank() string {
	needle := strings.ToLower(l.filter.Bank)
	if needle == "" || len(l.Visible()) > 0 {
		return ""
	}
	best, bestDist := "", -1
	for _, c := range l.contracts {
		if c.Bank == "" {
			continue
		}
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c.Bank))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Bank, d
		}
	}
	if bestDist < 0 || bestDist > len(needle)/2 {
		return ""
	}
	return best
}
