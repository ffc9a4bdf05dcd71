package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerline/billparse/internal/cache"
	"github.com/ledgerline/billparse/internal/model"
	"github.com/ledgerline/billparse/internal/validate"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

type fakeBackend struct {
	name  string
	raw   *model.RawExtraction
	err   error
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(ctx context.Context, pdf []byte) (*model.RawExtraction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Copy so each call observes a fresh payload.
	raw := *f.raw
	return &raw, nil
}

func goodRaw() *model.RawExtraction {
	return &model.RawExtraction{
		ProviderName:   strp("Atmos Energy"),
		UtilityType:    strp("gas"),
		AccountNumber:  strp("3046663356"),
		TotalAmountDue: fp(81.45),
	}
}

func badRaw() *model.RawExtraction {
	// No provider, short account: fails validation and scores 0.30.
	return &model.RawExtraction{
		AccountNumber:  strp("123"),
		TotalAmountDue: fp(81.45),
	}
}

func TestPipeline_Process_PrimaryAccepted(t *testing.T) {
	primary := &fakeBackend{name: "pdfco", raw: goodRaw()}
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}

	res, err := NewPipeline(primary, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Method != "pdfco" {
		t.Errorf("expected pdfco result, got %s", res.Method)
	}
	if !res.OK {
		t.Errorf("expected valid result, issues %v", res.Issues)
	}
	if res.Bill.ConfidenceScore < 0.70 {
		t.Errorf("accepted primary must meet the threshold, got %v", res.Bill.ConfidenceScore)
	}
	if secondary.calls != 0 {
		t.Error("secondary must not run when primary is accepted")
	}
}

func TestPipeline_Process_NoPrimaryGoesStraightToSecondary(t *testing.T) {
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}

	res, err := NewPipeline(nil, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Method != "openai" {
		t.Errorf("expected openai result, got %s", res.Method)
	}
	if secondary.calls != 1 {
		t.Errorf("expected one secondary call, got %d", secondary.calls)
	}
}

func TestPipeline_Process_PrimaryErrorFallsBack(t *testing.T) {
	primary := &fakeBackend{name: "pdfco", err: errors.New("upstream down")}
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}

	res, err := NewPipeline(primary, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Method != "openai" {
		t.Errorf("expected fallback to openai, got %s", res.Method)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected both backends called once, got %d/%d", primary.calls, secondary.calls)
	}
}

func TestPipeline_Process_InvalidPrimaryFallsBack(t *testing.T) {
	primary := &fakeBackend{name: "pdfco", raw: badRaw()}
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}

	res, err := NewPipeline(primary, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Method != "openai" {
		t.Errorf("expected fallback to openai, got %s", res.Method)
	}
	if !res.OK {
		t.Errorf("fallback result should be valid here, issues %v", res.Issues)
	}
}

func TestPipeline_Process_SecondaryKeptEvenWhenInvalid(t *testing.T) {
	secondary := &fakeBackend{name: "openai", raw: badRaw()}

	res, err := NewPipeline(nil, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("secondary output is kept regardless of validation: %v", err)
	}

	if res.OK {
		t.Error("expected validation failure to be recorded")
	}
	want := []string{validate.IssueMissingProvider, validate.IssueInvalidAccountNumber}
	if len(res.Issues) != len(want) || res.Issues[0] != want[0] || res.Issues[1] != want[1] {
		t.Errorf("expected issues %v, got %v", want, res.Issues)
	}
	// 0.80 - 2*0.20
	if d := res.Bill.ConfidenceScore - 0.40; d > 1e-9 || d < -1e-9 {
		t.Errorf("expected confidence 0.40, got %v", res.Bill.ConfidenceScore)
	}
	if !res.Bill.RequiresReview() {
		t.Error("low-confidence record must require review")
	}
}

func TestPipeline_Process_SecondaryErrorSurfaces(t *testing.T) {
	primary := &fakeBackend{name: "pdfco", err: errors.New("upstream down")}
	secondary := &fakeBackend{name: "openai", err: errors.New("model unavailable")}

	_, err := NewPipeline(primary, secondary).Process(context.Background(), []byte("%PDF"))
	if err == nil {
		t.Fatal("secondary failure must surface as an error")
	}
}

func TestPipeline_Process_ConfidenceWrittenToRawPayload(t *testing.T) {
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}

	res, err := NewPipeline(nil, secondary).Process(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	raw := res.Bill.RawExtractedData
	if raw == nil || raw.Confidence == nil {
		t.Fatal("final confidence must be written into the raw payload")
	}
	if *raw.Confidence != res.Bill.ConfidenceScore {
		t.Errorf("payload confidence %v != record confidence %v", *raw.Confidence, res.Bill.ConfidenceScore)
	}
}

func TestPipeline_Process_CacheSkipsBackends(t *testing.T) {
	secondary := &fakeBackend{name: "openai", raw: goodRaw()}
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	p := NewPipeline(nil, secondary, WithCache(mem, time.Minute))

	doc := []byte("%PDF same document")
	if _, err := p.Process(context.Background(), doc); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	res, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}

	if secondary.calls != 1 {
		t.Errorf("expected cached result to skip the backend, got %d calls", secondary.calls)
	}
	if res.Method != "openai" {
		t.Errorf("cached result lost its method, got %s", res.Method)
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name string, data []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	good := writeFile("bill.pdf", []byte("%PDF-1.4 content"))
	empty := writeFile("empty.pdf", nil)
	notPDF := writeFile("notes.pdf", []byte("plain text"))

	l := NewLoader(0)

	if _, err := l.Load(good); err != nil {
		t.Errorf("good pdf: %v", err)
	}
	if _, err := l.Load(empty); err == nil {
		t.Error("empty file must be rejected")
	}
	if _, err := l.Load(notPDF); err == nil {
		t.Error("non-pdf content must be rejected")
	}
	if _, err := l.Load(dir + "/missing.pdf"); err == nil {
		t.Error("missing file must be rejected")
	}

	small := NewLoader(4)
	if _, err := small.Load(good); err == nil {
		t.Error("oversized file must be rejected")
	}

	paths, err := l.ListDocuments(dir)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("expected 3 pdf paths, got %d", len(paths))
	}
}
