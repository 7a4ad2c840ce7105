// Package extract defines the extraction engine boundary for DocFlow.
//
// The engine turns a scanned contract document into recognized text plus
// structured contract fields. Callers treat it as a black box with
// unknown, variable latency: implementations may shell out to OCR
// binaries, call remote services, or return canned results in tests.
package extract

import (
	"context"
	"os"

	"github.com/docflow/docflow/errors"
)

// Document is one uploaded file handed to the engine. The worker that
// processes it owns the temp file exclusively and releases it on every
// exit path.
type Document struct {
	Name string // Original filename as uploaded
	Path string // Temp file on disk
	Size int64
}

// Remove deletes the document's temp file. Safe to call more than once.
func (d Document) Remove() error {
	if d.Path == "" {
		return nil
	}
	if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove document %s", d.Path)
	}
	return nil
}

// Fields holds the structured contract data pulled out of recognized text.
// Every field is best-effort: absent values stay empty rather than
// failing the extraction.
type Fields struct {
	Number             string `json:"number,omitempty"`
	ContractDate       string `json:"contract_date,omitempty"`
	CustomerName       string `json:"customer_name,omitempty"`
	ContractorName     string `json:"contractor_name,omitempty"`
	Subject            string `json:"subject,omitempty"`
	AmountIncludingVAT string `json:"amount_including_vat,omitempty"`
	VATRate            string `json:"vat_rate,omitempty"`
	VATAmount          string `json:"vat_amount,omitempty"`
	Deadline           string `json:"deadline,omitempty"`
	Penalties          string `json:"penalties,omitempty"`
	WarrantyMonths     string `json:"warranty_period_months,omitempty"`
	PaymentTermsDays   string `json:"payment_terms_days,omitempty"`
}

// Result is the engine's output for one document.
type Result struct {
	RawText string `json:"raw_text"`
	Fields  Fields `json:"fields"`
}

// ProgressFunc receives best-effort progress updates from the engine:
// a percentage in [0,100] and a short phase description.
type ProgressFunc func(pct int, message string)

// Engine is the opaque extraction boundary. Extract blocks until the
// document is processed or ctx is cancelled; implementations should honor
// ctx where they can, but callers must not rely on prompt interruption.
type Engine interface {
	Extract(ctx context.Context, doc Document, progress ProgressFunc) (*Result, error)
}
