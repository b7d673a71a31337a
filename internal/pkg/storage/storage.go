package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// FileStorage abstracts where generated documents live. The payroll service
// writes payslip PDFs through this interface so the backing store can move
// off the local disk without touching callers.
type FileStorage interface {
	// Upload stores the content under path and returns the stored path/key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a stored file.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// GetURL returns a URL under which the file can be fetched.
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists reports whether a file is stored under path.
	Exists(ctx context.Context, path string) (bool, error)
}

// PayslipDocumentPath is the canonical storage key for a payslip PDF.
// Documents are grouped per company and period so retention jobs can sweep
// whole periods at once.
func PayslipDocumentPath(companyID string, periodYear, periodMonth int, payslipID string) string {
	return fmt.Sprintf("payslips/%s/%d/%02d/%s.pdf", companyID, periodYear, periodMonth, payslipID)
}
