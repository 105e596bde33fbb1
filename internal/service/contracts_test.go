package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/contratos/internal/api"
)

type stubContracts struct {
	contracts []api.Contract
	err       error
	calls     int
}

func (s *stubContracts) ListContracts(context.Context) ([]api.Contract, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.contracts, nil
}

func mustDate(t *testing.T, s string) api.Date {
	t.Helper()
	d, err := api.ParseDate(s)
	require.NoError(t, err)
	return d
}

func sampleContracts(t *testing.T) []api.Contract {
	return []api.Contract{
		{ID: "1", Bank: "Alpha", Balance: 1000, CET: 12.5, DueDate: mustDate(t, "2024-01-10")},
		{ID: "2", Bank: "Beta", Balance: 2000, CET: 9.9, DueDate: mustDate(t, "2024-03-01")},
	}
}

func ids(cs []api.Contract) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterContracts_BankSubstringCaseInsensitive(t *testing.T) {
	contracts := sampleContracts(t)

	require.Equal(t, []string{"1"}, ids(FilterContracts(contracts, Filter{Bank: "alp"})))
	require.Equal(t, []string{"1"}, ids(FilterContracts(contracts, Filter{Bank: "alp", DueBefore: mustDate(t, "2024-12-31")})))
	require.Empty(t, FilterContracts(contracts, Filter{Bank: "alp", DueBefore: mustDate(t, "2023-12-31")}))
	require.Equal(t, []string{"1", "2"}, ids(FilterContracts(contracts, Filter{})))
	require.Equal(t, []string{"2"}, ids(FilterContracts(contracts, Filter{Bank: "ETA"})))
}

func TestContractList_BankFilterKeepsSpaces(t *testing.T) {
	l := NewContractList(&stubContracts{contracts: []api.Contract{
		{ID: "1", Bank: "Banco Alpha"},
		{ID: "2", Bank: "Alphabank"},
	}}, nil)
	require.NoError(t, l.Load(context.Background()))

	l.SetBankFilter("alpha")
	require.Equal(t, []string{"1", "2"}, ids(l.Visible()))

	l.SetBankFilter(" alpha")
	require.Equal(t, " alpha", l.Filter().Bank)
	require.Equal(t, []string{"1"}, ids(l.Visible()))

	l.SetBankFilter("alpha ")
	require.Empty(t, l.Visible())
}

func TestFilterContracts_DueBeforeIsInclusive(t *testing.T) {
	contracts := sampleContracts(t)

	require.Equal(t, []string{"1"}, ids(FilterContracts(contracts, Filter{DueBefore: mustDate(t, "2024-01-10")})))
	require.Empty(t, FilterContracts(contracts, Filter{DueBefore: mustDate(t, "2024-01-09")}))
	require.Equal(t, []string{"1", "2"}, ids(FilterContracts(contracts, Filter{DueBefore: mustDate(t, "2024-03-01")})))
}

func TestFilterContracts_UndatedHiddenByDateFilter(t *testing.T) {
	contracts := []api.Contract{{ID: "x", Bank: "Gamma"}}

	require.Len(t, FilterContracts(contracts, Filter{}), 1)
	require.Empty(t, FilterContracts(contracts, Filter{DueBefore: mustDate(t, "2030-01-01")}))
}

func TestFilterContracts_IndependentOfOrder(t *testing.T) {
	contracts := []api.Contract{
		{ID: "1", Bank: "Alpha", DueDate: mustDate(t, "2024-01-10")},
		{ID: "2", Bank: "Beta", DueDate: mustDate(t, "2024-03-01")},
		{ID: "3", Bank: "alphaville", DueDate: mustDate(t, "2024-02-01")},
		{ID: "4", Bank: "Caixa", DueDate: mustDate(t, "2024-01-01")},
	}
	f := Filter{Bank: "ALPHA", DueBefore: mustDate(t, "2024-02-15")}
	want := map[string]bool{"1": true, "3": true}

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]api.Contract(nil), contracts...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := FilterContracts(shuffled, f)
		require.Len(t, got, len(want))
		for _, c := range got {
			require.True(t, want[c.ID], "unexpected contract %s", c.ID)
		}
	}
}

func TestContractList_LoadAndFilter(t *testing.T) {
	src := &stubContracts{contracts: sampleContracts(t)}
	l := NewContractList(src, nil)

	require.NoError(t, l.Load(context.Background()))
	require.Len(t, l.Visible(), 2)

	l.SetBankFilter("alp")
	require.Equal(t, []string{"1"}, ids(l.Visible()))
	require.Equal(t, 1, src.calls, "filtering must not refetch")

	require.NoError(t, l.SetDueBefore("2023-01-01"))
	require.Empty(t, l.Visible())

	require.Error(t, l.SetDueBefore("01/02/2024"))
	require.Equal(t, "2023-01-01", l.Filter().DueBefore.String(), "bad input keeps previous filter")

	require.NoError(t, l.SetDueBefore(""))
	require.Equal(t, []string{"1"}, ids(l.Visible()))

	l.ClearFilters()
	require.Len(t, l.Visible(), 2)

	c, ok := l.Get("2")
	require.True(t, ok)
	require.Equal(t, "Beta", c.Bank)
	_, ok = l.Get("nope")
	require.False(t, ok)
}

func TestContractList_FetchFailureEmptiesList(t *testing.T) {
	src := &stubContracts{contracts: sampleContracts(t)}
	l := NewContractList(src, nil)
	require.NoError(t, l.Load(context.Background()))
	require.Len(t, l.All(), 2)

	src.err = errors.New("connection refused")
	err := l.Load(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "contracts", fetchErr.Resource)
	require.Empty(t, l.All())
	require.Empty(t, l.Visible())
}

func TestContractList_StaleLoadIgnored(t *testing.T) {
	l := NewContractList(&stubContracts{}, nil)
	old := l.Begin()
	newer := l.Begin()

	require.True(t, l.Apply(newer, []api.Contract{{ID: "new"}}, nil))
	require.False(t, l.Apply(old, []api.Contract{{ID: "old"}}, nil))
	require.Equal(t, []string{"new"}, ids(l.All()))
}

func TestContractList_ReplacesWholeCollection(t *testing.T) {
	src := &stubContracts{contracts: sampleContracts(t)}
	l := NewContractList(src, nil)
	require.NoError(t, l.Load(context.Background()))

	src.contracts = []api.Contract{{ID: "9", Bank: "Zeta"}}
	require.NoError(t, l.Load(context.Background()))
	require.Equal(t, []string{"9"}, ids(l.All()))
}

func TestContractList_ClosestBank(t *testing.T) {
	l := NewContractList(&stubContracts{contracts: []api.Contract{
		{ID: "1", Bank: "Itaú"},
		{ID: "2", Bank: "Sicoob"},
		{ID: "3", Bank: "Bradesco"},
	}}, nil)
	require.NoError(t, l.Load(context.Background()))

	require.Empty(t, l.ClosestBank(), "no filter, no hint")

	l.SetBankFilter("sicob")
	require.Empty(t, l.Visible())
	require.Equal(t, "Sicoob", l.ClosestBank())

	l.SetBankFilter("sic")
	require.NotEmpty(t, l.Visible())
	require.Empty(t, l.ClosestBank(), "rows visible, no hint")

	l.SetBankFilter("zzzzzzzzzzzzzz")
	require.Empty(t, l.ClosestBank(), "too far from any bank")
}

type stubExtratos struct {
	items []api.Extrato
	err   error
	asked string
}

func (s *stubExtratos) ListExtratos(_ context.Context, contractID string) ([]api.Extrato, error) {
	s.asked = contractID
	return s.items, s.err
}

func TestExtratoList(t *testing.T) {
	src := &stubExtratos{items: []api.Extrato{{ID: 1, Status: "processed"}, {ID: 2, Status: "pending"}}}
	l := NewExtratoList(src, "c-1", nil)

	require.NoError(t, l.Load(context.Background()))
	require.Equal(t, "c-1", src.asked)
	require.Len(t, l.Items(), 2)

	src.err = errors.New("boom")
	var fetchErr *FetchError
	require.ErrorAs(t, l.Load(context.Background()), &fetchErr)
	require.Empty(t, l.Items())
}
