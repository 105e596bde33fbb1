package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const uploadFallback = "Erro ao enviar."

// ExtratoUploader sends a statement file for a contract.
type ExtratoUploader interface {
	UploadExtrato(ctx context.Context, contractID, filename string, file io.Reader) error
}

// UploadWorkflow is one open "import extrato" dialog:
// idle -> pending -> succeeded | failed(message). Both outcomes are final;
// a new attempt needs a new dialog.
type UploadWorkflow struct {
	uploader   ExtratoUploader
	logger     *log.Logger
	token      string
	contractID string
	path       string
	problem    string
	status     Status
}

func NewUploadWorkflow(uploader ExtratoUploader, contractID string, logger *log.Logger) *UploadWorkflow {
	return &UploadWorkflow{
		uploader:   uploader,
		logger:     orDiscard(logger),
		token:      uuid.NewString(),
		contractID: contractID,
		status:     idle(),
	}
}

// Token identifies this dialog instance; results carrying another token are stale.
func (w *UploadWorkflow) Token() string      { return w.token }
func (w *UploadWorkflow) ContractID() string { return w.contractID }
func (w *UploadWorkflow) Path() string       { return w.path }
func (w *UploadWorkflow) Status() Status     { return w.status }

// FileProblem explains why the selected file cannot be sent, or "".
func (w *UploadWorkflow) FileProblem() string { return w.problem }

// SetFile selects the file to send and checks it up front. A missing,
// non-regular or empty file is recorded as the selection but keeps the
// dialog idle; the returned error carries the message.
func (w *UploadWorkflow) SetFile(path string) error {
	if w.status.Pending() {
		return ErrBusy
	}
	if w.status.Settled() {
		return ErrFinished
	}
	w.path = strings.TrimSpace(path)
	w.problem = ""
	if w.path == "" {
		return nil
	}
	info, err := os.Stat(w.path)
	if err := checkFile(info, err); err != nil {
		w.problem = err.Message
		return err
	}
	return nil
}

func checkFile(info os.FileInfo, err error) *SubmissionError {
	switch {
	case err != nil:
		return &SubmissionError{Op: "upload", Message: "Não foi possível abrir o arquivo.", Err: err}
	case !info.Mode().IsRegular():
		return &SubmissionError{Op: "upload", Message: "Selecione um arquivo."}
	case info.Size() == 0:
		return &SubmissionError{Op: "upload", Message: "Arquivo vazio."}
	}
	return nil
}

// CanSubmit is true only while idle with a usable file selected.
func (w *UploadWorkflow) CanSubmit() bool {
	return w.status.Idle() && w.path != "" && w.problem == ""
}

// CanCancel is false while the upload is in flight.
func (w *UploadWorkflow) CanCancel() bool {
	return !w.status.Pending()
}

// Begin moves idle -> pending.
func (w *UploadWorkflow) Begin() error {
	switch {
	case w.status.Pending():
		return ErrBusy
	case w.status.Settled():
		return ErrFinished
	case w.path == "":
		return ErrNotReady
	case w.problem != "":
		return &SubmissionError{Op: "upload", Message: w.problem}
	}
	w.status = pending()
	return nil
}

// Run sends the selected file. It reads no mutable workflow state beyond the
// path fixed by Begin, so it may run off the UI loop. The file is checked
// again since it may have changed after SetFile.
func (w *UploadWorkflow) Run(ctx context.Context) error {
	f, err := os.Open(w.path)
	if err != nil {
		return checkFile(nil, err)
	}
	defer f.Close()

	if err := checkFile(f.Stat()); err != nil {
		return err
	}

	if err := w.uploader.UploadExtrato(ctx, w.contractID, w.path, f); err != nil {
		return submissionError("upload", err, uploadFallback)
	}
	return nil
}

// Finish records the outcome of Run. It is a no-op unless pending.
func (w *UploadWorkflow) Finish(err error) {
	if !w.status.Pending() {
		return
	}
	if err != nil {
		w.logger.Warn("upload failed", "contract", w.contractID, "file", w.path, "err", err)
		w.status = failed(Message(err, uploadFallback))
		return
	}
	w.logger.Info("extrato uploaded", "contract", w.contractID, "file", w.path)
	w.status = succeeded()
}

// Submit runs the whole transition synchronously.
func (w *UploadWorkflow) Submit(ctx context.Context) error {
	if err := w.Begin(); err != nil {
		return err
	}
	err := w.Run(ctx)
	w.Finish(err)
	if err != nil {
		return fmt.Errorf("upload extrato: %w", err)
	}
	return nil
}
