package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ledgerline/billparse/internal/extract"
	"github.com/ledgerline/billparse/internal/model"
	"github.com/ledgerline/billparse/internal/util"
	"github.com/ledgerline/billparse/internal/vendors"
)

const pdfcoDefaultBaseURL = "https://api.pdf.co/v1"

// PDFCoConfig configures the PDF.co backend. APIKey has no default and
// must be supplied by the caller.
type PDFCoConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPProxy         string
	HTTPSProxy        string
}

// PDFCo extracts bills by converting the PDF to text through the PDF.co
// API, then running pattern extraction plus vendor enhancement on the
// text.
type PDFCo struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	parser     *extract.Generic
	vendors    *vendors.Registry
}

// NewPDFCo creates the PDF.co backend. Returns a ConfigurationError
// when no API key is supplied.
func NewPDFCo(cfg PDFCoConfig) (*PDFCo, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Backend: "pdfco", Missing: "api key"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pdfcoDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 2
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
		},
	}

	return &PDFCo{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		parser:     extract.NewGeneric(),
		vendors:    vendors.NewRegistry(),
	}, nil
}

// Name returns the backend name
func (p *PDFCo) Name() string {
	return "pdfco"
}

// Extract uploads the document, converts it to text remotely and parses
// the text. Fails with an ExtractionError when the parsed text yields
// none of the key fields (total, account number, provider).
func (p *PDFCo) Extract(ctx context.Context, pdfBytes []byte) (*model.RawExtraction, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	txt, err := p.convertToText(ctx, pdfBytes)
	if err != nil {
		return nil, &ExtractionError{Backend: "pdfco", Reason: "convert to text", Err: err}
	}

	raw := p.parser.Parse(txt)

	enhanced, vendorName := p.vendors.Apply(*raw, txt)
	raw = &enhanced
	if vendorName != "" {
		zap.L().Info("fingerprint matched", zap.String("vendor", vendorName))
	}

	if raw.TotalAmountDue == nil && raw.AccountNumber == nil && raw.ProviderName == nil {
		return nil, &ExtractionError{Backend: "pdfco", Reason: "parsed text but no key fields found"}
	}
	return raw, nil
}

// convertToText runs the two-step upload then convert flow.
func (p *PDFCo) convertToText(ctx context.Context, pdfBytes []byte) (string, error) {
	fileURL, err := p.upload(ctx, pdfBytes)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{
		"url":    fileURL,
		"inline": true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pdf/convert/to/text", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("convert returned status %d", resp.StatusCode)
	}

	var conv struct {
		Body    string `json:"body"`
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return "", fmt.Errorf("decode convert response: %w", err)
	}
	if conv.Error {
		return "", fmt.Errorf("convert error: %s", conv.Message)
	}
	return conv.Body, nil
}

// upload posts the PDF as multipart and returns the hosted file URL.
func (p *PDFCo) upload(ctx context.Context, pdfBytes []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", "bill.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(pdfBytes)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/file/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	var up struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if up.URL == "" {
		return "", fmt.Errorf("upload response carried no file url")
	}
	return up.URL, nil
}
