// Package reports validates QuickBooks/CVR spreadsheet files before they are
// uploaded to the backend.
//
// The backend only accepts Excel workbooks (.xlsx or .xls); rejecting bad
// files client-side saves a round trip and gives a clearer message than the
// backend's generic 400.
package reports

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndasurveying/dashctl/internal/domain"
)

// Kind identifies which report pipeline the upload feeds.
type Kind string

const (
	KindPnL      Kind = "pnl"      // P&L export from QuickBooks
	KindInvoices Kind = "invoices" // invoice report from QuickBooks
	KindCVR      Kind = "cvr"      // master CVR tracking template
)

// Kinds lists the accepted upload kinds in display order.
var Kinds = []Kind{KindPnL, KindInvoices, KindCVR}

// ParseKind validates an upload kind from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPnL:
		return KindPnL, nil
	case KindInvoices:
		return KindInvoices, nil
	case KindCVR:
		return KindCVR, nil
	default:
		return "", domain.Invalid("reports.parse_kind",
			fmt.Sprintf("unknown report kind %q (expected pnl, invoices or cvr)", s))
	}
}

// allowedExtensions are the spreadsheet formats the backend parses.
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// allowedContentTypes are the sniffed/registered MIME types accepted for
// those extensions. xlsx workbooks sniff as zip archives; legacy xls files
// are OLE compound documents, which the stdlib sniffer reports as a generic
// binary stream.
var allowedContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"application/zip":                                                   true,
	"application/x-ole-storage":                                         true,
	"application/octet-stream":                                          true,
}

// DetectContentType determines the MIME type of an upload.
//
// Detection priority:
// 1. If providedType is non-empty, use it directly
// 2. Try to detect from the file extension
// 3. Sniff the first 512 bytes of content
// 4. Fall back to "application/octet-stream"
func DetectContentType(providedType, filename string, data io.Reader) string {
	if providedType != "" {
		return providedType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	if data != nil {
		buffer := make([]byte, 512)
		n, err := io.ReadFull(data, buffer)
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return http.DetectContentType(buffer[:n])
		}
	}

	return "application/octet-stream"
}

// normalize strips parameters like charset and lowercases the base type.
func normalize(contentType string) string {
	base := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(base))
}

// IsAllowedContentType checks whether a MIME type is acceptable for a
// spreadsheet upload.
func IsAllowedContentType(contentType string) bool {
	return allowedContentTypes[normalize(contentType)]
}

// ValidateFilename checks the extension without touching the file.
func ValidateFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return domain.Invalid("reports.validate",
			fmt.Sprintf("%q is not an Excel workbook (expected .xlsx or .xls)", filepath.Base(filename)))
	}
	return nil
}

// ValidateFile checks that path names a readable Excel workbook: extension
// first, then a content sniff so a renamed text file is caught before the
// upload is attempted.
func ValidateFile(path string) error {
	if err := ValidateFilename(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Wrap(err, domain.EINVALID, "reports.validate", fmt.Sprintf("cannot read %q", path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.Internal(err, "reports.validate", "stat upload file")
	}
	if info.Size() == 0 {
		return domain.Invalid("reports.validate", fmt.Sprintf("%q is empty", filepath.Base(path)))
	}

	contentType := DetectContentType("", "", f)
	if !IsAllowedContentType(contentType) {
		return domain.Invalid("reports.validate",
			fmt.Sprintf("%q does not look like an Excel workbook (detected %s)", filepath.Base(path), contentType))
	}
	return nil
}
