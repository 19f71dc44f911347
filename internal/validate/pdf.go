package validate

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/cuongbtq/jobboard/internal/domain"
)

const (
	// MaxAttachmentBytes is the largest document accepted for upload
	MaxAttachmentBytes = 10 << 20

	pdfMIME = "application/pdf"

	msgNotPDF   = "Please select a PDF file only"
	msgTooLarge = "File size must be less than 10MB"

	// MsgUnreadablePDF is shown for a document that sniffs as PDF but does not parse
	MsgUnreadablePDF = "The PDF file could not be read"
)

// PDFInfo describes an attachment that passed the checks
type PDFInfo struct {
	Pages int
	Size  int
}

// CheckPDF returns the user-facing reason a document is rejected, or "" when it is accepted
func CheckPDF(a *domain.Attachment) string {
	if a == nil {
		return ""
	}
	if len(a.Data) > MaxAttachmentBytes {
		return msgTooLarge
	}
	if !mimetype.Detect(a.Data).Is(pdfMIME) {
		return msgNotPDF
	}
	return ""
}

// Inspect opens the document and reports its page count. Documents failing
// CheckPDF come back as a *domain.ValidationError.
func Inspect(a *domain.Attachment) (info PDFInfo, err error) {
	if a == nil {
		return PDFInfo{}, nil
	}
	if msg := CheckPDF(a); msg != "" {
		return PDFInfo{}, &domain.ValidationError{Fields: map[string]string{"attachment": msg}}
	}

	// the reader panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			info, err = PDFInfo{}, fmt.Errorf("failed to read pdf %s: %v", a.Name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(a.Data), int64(len(a.Data)))
	if err != nil {
		return PDFInfo{}, fmt.Errorf("failed to read pdf %s: %w", a.Name, err)
	}

	return PDFInfo{Pages: r.NumPage(), Size: len(a.Data)}, nil
}

func checkAttachment(fields map[string]string, name string, a *domain.Attachment) {
	if msg := CheckPDF(a); msg != "" {
		fields[name] = msg
	}
}
