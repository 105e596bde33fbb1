package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

// Login exchanges username and password for a bearer token via POST /token.
// Any non-2xx answer is ErrInvalidCredentials; the server's text is not kept.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	header := http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}}

	resp, err := c.Call(ctx, http.MethodPost, "/token", strings.NewReader(form.Encode()), header)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if !ok(resp) {
		return "", fmt.Errorf("%w (http %d)", ErrInvalidCredentials, resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("decode token: %w", ErrInvalidCredentials)
	}
	return body.AccessToken, nil
}

// ListContracts fetches every contract visible to the session.
func (c *Client) ListContracts(ctx context.Context) ([]Contract, error) {
	var out []Contract
	if err := c.getJSON(ctx, "/contracts", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Contract{}
	}
	return out, nil
}

// CreateContract sends POST /contracts.
func (c *Client) CreateContract(ctx context.Context, in ContractInput) error {
	return c.sendJSON(ctx, http.MethodPost, "/contracts", in)
}

// UpdateContract sends PUT /contracts/{id}.
func (c *Client) UpdateContract(ctx context.Context, id string, in ContractInput) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("update contract: empty id")
	}
	return c.sendJSON(ctx, http.MethodPut, "/contracts/"+url.PathEscape(id), in)
}

// ListExtratos fetches the statements uploaded for one contract.
func (c *Client) ListExtratos(ctx context.Context, contractID string) ([]Extrato, error) {
	var out []Extrato
	if err := c.getJSON(ctx, "/contracts/"+url.PathEscape(contractID)+"/extratos", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Extrato{}
	}
	return out, nil
}

// UploadExtrato posts a statement file for contractID as multipart form data
// with fields "file" and "contract_id".
func (c *Client) UploadExtrato(ctx context.Context, contractID, filename string, file io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.WriteField("contract_id", contractID); err != nil {
		return fmt.Errorf("multipart contract_id: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("multipart close: %w", err)
	}

	header := http.Header{"Content-Type": []string{mw.FormDataContentType()}}
	resp, err := c.Call(ctx, http.MethodPost, "/uploads", &buf, header)
	if err != nil {
		return err
	}
	if !ok(resp) {
		return newHTTPError(resp)
	}
	drain(resp)
	return nil
}

// ExportAccruals requests the accruals CSV for [start, end]. The caller owns
// the returned body and must close it.
func (c *Client) ExportAccruals(ctx context.Context, start, end Date) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	return c.download(ctx, "/accruals/export?"+q.Encode())
}

// ExportTransactions requests the raw transactions of one company for
// [start, end]. The caller owns the returned body and must close it.
func (c *Client) ExportTransactions(ctx context.Context, empresaID string, start, end Date) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("empresa_id", empresaID)
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	return c.download(ctx, "/transactions/export?"+q.Encode())
}

func (c *Client) download(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.Call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(resp) {
		return nil, newHTTPError(resp)
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	header := http.Header{"Accept": []string{"application/json"}}
	resp, err := c.Call(ctx, http.MethodGet, path, nil, header)
	if err != nil {
		return err
	}
	if !ok(resp) {
		return newHTTPError(resp)
	}
	defer drain(resp)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.Call(ctx, method, path, bytes.NewReader(data), header)
	if err != nil {
		return err
	}
	if !ok(resp) {
		return newHTTPError(resp)
	}
	drain(resp)
	return nil
}
