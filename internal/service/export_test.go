package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/contratos/internal/api"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream cut") }

type stubReports struct {
	body    *trackedBody
	err     error
	kind    ExportKind
	company string
	start   api.Date
	end     api.Date
	calls   int
}

func (s *stubReports) ExportAccruals(_ context.Context, start, end api.Date) (io.ReadCloser, error) {
	s.calls++
	s.kind, s.start, s.end = ExportAccruals, start, end
	return s.result()
}

func (s *stubReports) ExportTransactions(_ context.Context, empresaID string, start, end api.Date) (io.ReadCloser, error) {
	s.calls++
	s.kind, s.company, s.start, s.end = ExportTransactions, empresaID, start, end
	return s.result()
}

func (s *stubReports) result() (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func bodyOf(s string) *trackedBody { return &trackedBody{Reader: strings.NewReader(s)} }

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExport_ReadyGate(t *testing.T) {
	acc := NewAccrualsExport(&stubReports{}, t.TempDir(), nil)
	require.False(t, acc.Ready())
	require.NoError(t, acc.SetRange("2024-01-01", ""))
	require.False(t, acc.Ready())
	require.NoError(t, acc.SetRange("2024-01-01", "2024-01-31"))
	require.True(t, acc.Ready())

	tx := NewTransactionsExport(&stubReports{}, t.TempDir(), nil)
	require.True(t, tx.RequiresCompany())
	require.NoError(t, tx.SetRange("2024-01-01", "2024-01-31"))
	require.False(t, tx.Ready())
	require.NoError(t, tx.SetCompany(" 42 "))
	require.True(t, tx.Ready())
	require.Equal(t, "42", tx.CompanyID())

	_, err := NewAccrualsExport(&stubReports{}, t.TempDir(), nil).Submit(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
}

func TestExport_AccrualsSaved(t *testing.T) {
	dir := t.TempDir()
	src := &stubReports{body: bodyOf("a,b\n1,2\n")}
	w := NewAccrualsExport(src, dir, nil)
	require.NoError(t, w.SetRange("2024-01-01", "2024-01-31"))

	path, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "accruals.csv"), path)
	require.Equal(t, path, w.SavedPath())
	require.True(t, w.Status().Succeeded())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,2\n", string(data))
	require.True(t, src.body.closed)
	require.Equal(t, []string{"accruals.csv"}, dirEntries(t, dir))
	require.Equal(t, "2024-01-01", src.start.String())
	require.Equal(t, "2024-01-31", src.end.String())
}

func TestExport_TransactionsSavedAndRepeatable(t *testing.T) {
	dir := t.TempDir()
	src := &stubReports{body: bodyOf("first")}
	w := NewTransactionsExport(src, dir, nil)
	require.NoError(t, w.SetRange("2024-02-01", "2024-02-29"))
	require.NoError(t, w.SetCompany("7"))

	path, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "transactions.txt"), path)
	require.Equal(t, "7", src.company)

	require.True(t, w.Ready(), "a finished export can run again")
	src.body = bodyOf("second")
	_, err = w.Submit(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
	require.Equal(t, 2, src.calls)
}

func TestExport_ServerErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	src := &stubReports{err: &api.HTTPError{StatusCode: 400, Detail: "Período inválido"}}
	w := NewAccrualsExport(src, dir, nil)
	require.NoError(t, w.SetRange("2024-01-01", "2024-01-31"))

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	require.True(t, w.Status().Failed())
	require.Equal(t, "Período inválido", w.Status().Message)
	require.Empty(t, dirEntries(t, dir))
	require.True(t, w.Ready(), "failure re-enables the trigger")

	src.err = errors.New("dial tcp: refused")
	_, err = w.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, "Erro ao exportar.", w.Status().Message)
}

func TestExport_InterruptedStreamCleansUp(t *testing.T) {
	dir := t.TempDir()
	body := &trackedBody{Reader: failingReader{}}
	w := NewAccrualsExport(&stubReports{body: body}, dir, nil)
	require.NoError(t, w.SetRange("2024-01-01", "2024-01-31"))

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	require.True(t, body.closed)
	require.Equal(t, "Não foi possível salvar accruals.csv.", w.Status().Message)
	require.Empty(t, dirEntries(t, dir), "no partial artifact is left")
}

func TestExport_BadDates(t *testing.T) {
	src := &stubReports{body: bodyOf("x")}
	w := NewAccrualsExport(src, t.TempDir(), nil)
	require.NoError(t, w.SetRange("31/01/2024", "2024-01-31"))

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, "Data inicial inválida.", w.Status().Message)
	require.Zero(t, src.calls)
}

func TestExport_PendingLocksInputs(t *testing.T) {
	w := NewAccrualsExport(&stubReports{body: bodyOf("x")}, t.TempDir(), nil)
	require.NoError(t, w.SetRange("2024-01-01", "2024-01-31"))

	req, err := w.Begin()
	require.NoError(t, err)
	require.False(t, w.Ready())
	require.ErrorIs(t, w.SetRange("2024-02-01", "2024-02-02"), ErrBusy)
	_, err = w.Begin()
	require.ErrorIs(t, err, ErrBusy)

	path, err := w.Run(context.Background(), req)
	w.Finish(path, err)
	require.NoError(t, err)
	require.True(t, w.Status().Succeeded())
}
