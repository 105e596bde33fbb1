package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jask/contratos/internal/api"
)

const exportFallback = "Erro ao exportar."

// ExportKind selects the report.
type ExportKind string

const (
	ExportAccruals     ExportKind = "accruals"
	ExportTransactions ExportKind = "transactions"
)

// Filename is the fixed name the report is saved under.
func (k ExportKind) Filename() string {
	if k == ExportTransactions {
		return "transactions.txt"
	}
	return "accruals.csv"
}

// ReportSource streams report bodies. Callers close what they get.
type ReportSource interface {
	ExportAccruals(ctx context.Context, start, end api.Date) (io.ReadCloser, error)
	ExportTransactions(ctx context.Context, empresaID string, start, end api.Date) (io.ReadCloser, error)
}

// ExportRequest is the input snapshot taken when an export starts.
type ExportRequest struct {
	Kind      ExportKind
	Start     string
	End       string
	CompanyID string
}

// ExportWorkflow downloads one report kind into dir:
// idle -> pending -> succeeded | failed(message). Unlike uploads, a settled
// export can be triggered again.
type ExportWorkflow struct {
	src       ReportSource
	logger    *log.Logger
	kind      ExportKind
	dir       string
	token     string
	start     string
	end       string
	companyID string
	status    Status
	saved     string
}

// NewAccrualsExport needs a date range.
func NewAccrualsExport(src ReportSource, dir string, logger *log.Logger) *ExportWorkflow {
	return newExport(src, ExportAccruals, dir, logger)
}

// NewTransactionsExport needs a company id and a date range.
func NewTransactionsExport(src ReportSource, dir string, logger *log.Logger) *ExportWorkflow {
	return newExport(src, ExportTransactions, dir, logger)
}

func newExport(src ReportSource, kind ExportKind, dir string, logger *log.Logger) *ExportWorkflow {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	return &ExportWorkflow{
		src:    src,
		logger: orDiscard(logger),
		kind:   kind,
		dir:    dir,
		token:  uuid.NewString(),
		status: idle(),
	}
}

func (w *ExportWorkflow) Kind() ExportKind  { return w.kind }
func (w *ExportWorkflow) Token() string     { return w.token }
func (w *ExportWorkflow) Status() Status    { return w.status }
func (w *ExportWorkflow) Start() string     { return w.start }
func (w *ExportWorkflow) End() string       { return w.end }
func (w *ExportWorkflow) CompanyID() string { return w.companyID }

// SavedPath is where the last successful export was written.
func (w *ExportWorkflow) SavedPath() string { return w.saved }

// RequiresCompany reports whether the company id is a required input.
func (w *ExportWorkflow) RequiresCompany() bool {
	return w.kind == ExportTransactions
}

// SetRange sets the date inputs (YYYY-MM-DD).
func (w *ExportWorkflow) SetRange(start, end string) error {
	if w.status.Pending() {
		return ErrBusy
	}
	w.start, w.end = strings.TrimSpace(start), strings.TrimSpace(end)
	return nil
}

// SetCompany sets the company input.
func (w *ExportWorkflow) SetCompany(id string) error {
	if w.status.Pending() {
		return ErrBusy
	}
	w.companyID = strings.TrimSpace(id)
	return nil
}

// Ready gates the export trigger: every required input is filled and no
// export is in flight.
func (w *ExportWorkflow) Ready() bool {
	if w.status.Pending() || w.start == "" || w.end == "" {
		return false
	}
	return !w.RequiresCompany() || w.companyID != ""
}

// Begin moves to pending and snapshots the inputs.
func (w *ExportWorkflow) Begin() (ExportRequest, error) {
	if w.status.Pending() {
		return ExportRequest{}, ErrBusy
	}
	if !w.Ready() {
		return ExportRequest{}, ErrNotReady
	}
	w.status = pending()
	return ExportRequest{Kind: w.kind, Start: w.start, End: w.end, CompanyID: w.companyID}, nil
}

// Run downloads req into the export directory and returns the saved path.
// The response body and the temporary file are released before returning,
// whatever the outcome.
func (w *ExportWorkflow) Run(ctx context.Context, req ExportRequest) (string, error) {
	start, err := api.ParseDate(req.Start)
	if err != nil {
		return "", &SubmissionError{Op: "export", Message: "Data inicial inválida.", Err: err}
	}
	end, err := api.ParseDate(req.End)
	if err != nil {
		return "", &SubmissionError{Op: "export", Message: "Data final inválida.", Err: err}
	}

	var body io.ReadCloser
	switch req.Kind {
	case ExportTransactions:
		body, err = w.src.ExportTransactions(ctx, req.CompanyID, start, end)
	default:
		body, err = w.src.ExportAccruals(ctx, start, end)
	}
	if err != nil {
		return "", submissionError("export", err, exportFallback)
	}
	defer body.Close()

	dest := filepath.Join(w.dir, req.Kind.Filename())
	if err := saveArtifact(body, dest); err != nil {
		return "", &SubmissionError{Op: "export", Message: fmt.Sprintf("Não foi possível salvar %s.", req.Kind.Filename()), Err: err}
	}
	return dest, nil
}

// saveArtifact streams r into a temporary sibling of dest and renames it into
// place, so a partial download never appears under the final name.
func saveArtifact(r io.Reader, dest string) (err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+"-*.part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// Finish records the outcome of Run. It is a no-op unless pending.
func (w *ExportWorkflow) Finish(path string, err error) {
	if !w.status.Pending() {
		return
	}
	if err != nil {
		w.logger.Warn("export failed", "kind", w.kind, "err", err)
		w.status = failed(Message(err, exportFallback))
		return
	}
	w.logger.Info("export saved", "kind", w.kind, "path", path)
	w.saved = path
	w.status = succeeded()
}

// Submit runs the whole export synchronously.
func (w *ExportWorkflow) Submit(ctx context.Context) (string, error) {
	req, err := w.Begin()
	if err != nil {
		return "", err
	}
	path, err := w.Run(ctx, req)
	w.Finish(path, err)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", w.kind, err)
	}
	return path, nil
}

