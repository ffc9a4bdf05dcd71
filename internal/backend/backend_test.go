package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPDFCo_RequiresAPIKey(t *testing.T) {
	_, err := NewPDFCo(PDFCoConfig{})
	if err == nil {
		t.Fatal("expected configuration error without api key")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if cfgErr.Backend != "pdfco" {
		t.Errorf("expected pdfco backend in error, got %s", cfgErr.Backend)
	}
}

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

const pdfcoBillText = `ATMOS ENERGY
Account Number: 3046663356
Billing Date: 03/05/24
Previous Balance 75.00
Current Charges 81.45
TOTAL AMOUNT DUE $81.45
`

func newPDFCoServer(t *testing.T, body string, convErr bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			t.Error("upload request missing api key header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("upload is not multipart: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"url": "https://files.example/bill.pdf"})
	})
	mux.HandleFunc("/pdf/convert/to/text", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL    string `json:"url"`
			Inline bool   `json:"inline"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("convert request body: %v", err)
		}
		if req.URL != "https://files.example/bill.pdf" {
			t.Errorf("convert did not receive uploaded file url, got %q", req.URL)
		}
		if !req.Inline {
			t.Error("convert request should ask for inline text")
		}
		resp := map[string]any{"body": body, "error": convErr}
		if convErr {
			resp["message"] = "conversion failed upstream"
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func TestPDFCo_Extract(t *testing.T) {
	srv := newPDFCoServer(t, pdfcoBillText, false)
	defer srv.Close()

	b, err := NewPDFCo(PDFCoConfig{APIKey: "test-key", BaseURL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("NewPDFCo: %v", err)
	}

	raw, err := b.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// The text trips the Atmos fingerprint, so the enhancer's provider
	// spelling wins over the generic line capture.
	if raw.ProviderName == nil || *raw.ProviderName != "Atmos Energy" {
		t.Errorf("expected provider Atmos Energy, got %v", raw.ProviderName)
	}
	if raw.VendorName == nil || *raw.VendorName != "Atmos Energy" {
		t.Errorf("expected vendor name set by enhancer, got %v", raw.VendorName)
	}
	if raw.AccountNumber == nil || *raw.AccountNumber != "3046663356" {
		t.Errorf("expected account number, got %v", raw.AccountNumber)
	}
	if raw.TotalAmountDue == nil || *raw.TotalAmountDue != 81.45 {
		t.Errorf("expected total 81.45, got %v", raw.TotalAmountDue)
	}
	if raw.RawTextSample == "" {
		t.Error("expected raw text sample to be retained")
	}
}

func TestPDFCo_Extract_NoKeyFieldsFails(t *testing.T) {
	srv := newPDFCoServer(t, "nothing a bill parser can use", false)
	defer srv.Close()

	b, err := NewPDFCo(PDFCoConfig{APIKey: "test-key", BaseURL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("NewPDFCo: %v", err)
	}

	_, err = b.Extract(context.Background(), []byte("%PDF-fake"))
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if exErr.Backend != "pdfco" {
		t.Errorf("expected pdfco in error, got %s", exErr.Backend)
	}
}

func TestPDFCo_Extract_ConvertErrorSurfaces(t *testing.T) {
	srv := newPDFCoServer(t, "", true)
	defer srv.Close()

	b, err := NewPDFCo(PDFCoConfig{APIKey: "test-key", BaseURL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("NewPDFCo: %v", err)
	}

	_, err = b.Extract(context.Background(), []byte("%PDF-fake"))
	if err == nil {
		t.Fatal("expected error from convert failure")
	}
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
}

func TestDecodeModelPayload_MetersAsList(t *testing.T) {
	raw, err := decodeModelPayload([]byte(`{
		"provider_name": "Atmos Energy",
		"total_amount_due": 81.45,
		"meters": [{"meter_number": "M-1", "usage": 42}]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.Meters) != 1 {
		t.Fatalf("expected 1 meter, got %d", len(raw.Meters))
	}
	if raw.Meters[0].MeterNumber == nil || *raw.Meters[0].MeterNumber != "M-1" {
		t.Error("meter number lost in decode")
	}
}

func TestDecodeModelPayload_MetersAsSingleObject(t *testing.T) {
	raw, err := decodeModelPayload([]byte(`{"meters": {"meter_number": "M-1"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.Meters) != 1 {
		t.Fatalf("expected single-object meters to become a one-element list, got %d", len(raw.Meters))
	}
}

func TestDecodeModelPayload_MetersNull(t *testing.T) {
	raw, err := decodeModelPayload([]byte(`{"meters": null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.Meters != nil {
		t.Error("null meters should stay nil")
	}
}

func TestDecodeModelPayload_ComcastTypeHint(t *testing.T) {
	raw, err := decodeModelPayload([]byte(`{"provider_name": "Comcast Business", "utility_type": null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.UtilityType == nil || *raw.UtilityType != "other" {
		t.Errorf("expected comcast hint to set type other, got %v", raw.UtilityType)
	}

	// An explicit type is never overwritten.
	raw, err = decodeModelPayload([]byte(`{"provider_name": "Comcast Business", "utility_type": "trash"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *raw.UtilityType != "trash" {
		t.Errorf("explicit type must win, got %v", *raw.UtilityType)
	}
}

func TestPDFToText_RejectsGarbage(t *testing.T) {
	if _, err := pdfToText([]byte("not a pdf at all")); err == nil {
		t.Error("expected error for non-pdf bytes")
	}
}
