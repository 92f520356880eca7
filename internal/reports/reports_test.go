package reports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndasurveying/dashctl/internal/domain"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"pnl", KindPnL, false},
		{"invoices", KindInvoices, false},
		{"cvr", KindCVR, false},
		{"  CVR ", KindCVR, false},
		{"PnL", KindPnL, false},
		{"payroll", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	if err := ValidateFilename("report.xlsx"); err != nil {
		t.Errorf("ValidateFilename(report.xlsx): %v", err)
	}
	if err := ValidateFilename("legacy.XLS"); err != nil {
		t.Errorf("ValidateFilename(legacy.XLS): %v", err)
	}
	if err := ValidateFilename("report.csv"); err == nil {
		t.Error("ValidateFilename(report.csv) should fail")
	} else if domain.ErrorCode(err) != domain.EINVALID {
		t.Errorf("error code = %q, want %q", domain.ErrorCode(err), domain.EINVALID)
	}
}

// xlsxHeader is the zip local-file-header magic every .xlsx workbook starts with.
var xlsxHeader = []byte{'P', 'K', 0x03, 0x04, 0x14, 0x00, 0x06, 0x00}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, content []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	workbook := write("pnl.xlsx", append(xlsxHeader, []byte("workbook-bytes")...))
	if err := ValidateFile(workbook); err != nil {
		t.Errorf("ValidateFile(zip-magic .xlsx): %v", err)
	}

	// A text file renamed to .xlsx sniffs as text/plain and is rejected.
	renamed := write("renamed.xlsx", []byte("job_code,amount\nNDA-001,100\n"))
	if err := ValidateFile(renamed); err == nil {
		t.Error("ValidateFile(renamed csv) should fail the content sniff")
	}

	empty := write("empty.xlsx", nil)
	if err := ValidateFile(empty); err == nil {
		t.Error("ValidateFile(empty file) should fail")
	}

	if err := ValidateFile(filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("ValidateFile(missing file) should fail")
	}
}

func TestDetectContentType(t *testing.T) {
	// Provided type wins over everything else.
	if got := DetectContentType("application/vnd.ms-excel", "x.bin", nil); got != "application/vnd.ms-excel" {
		t.Errorf("provided type not honoured, got %q", got)
	}

	// Content sniffing identifies zip-based workbooks.
	got := DetectContentType("", "", strings.NewReader(string(xlsxHeader)+"rest"))
	if got != "application/zip" {
		t.Errorf("sniffed type = %q, want application/zip", got)
	}

	// Nothing to go on falls back to a generic binary stream.
	if got := DetectContentType("", "", nil); got != "application/octet-stream" {
		t.Errorf("fallback type = %q", got)
	}
}
