// internal/cv/extractor.go
package cv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "recruitflow/internal/common/errors"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
)

// MaxUploadBytes caps uploaded CV files at 10 MB.
const MaxUploadBytes = 10 << 20

// ExtractedCV holds the text pulled out of one uploaded CV file.
type ExtractedCV struct {
	Filename string
	FileType string
	FileSize int64
	Text     string
}

// Extractor converts uploaded CV files (PDF, DOCX, plain text) into the
// text the scoring provider consumes. Files are staged on disk because
// the converter works on paths.
type Extractor struct {
	uploadsDir string
}

func NewExtractor(uploadsDir string) *Extractor {
	return &Extractor{uploadsDir: uploadsDir}
}

// Extract reads one uploaded file and returns its text content.
func (e *Extractor) Extract(filename string, reader io.Reader) (*ExtractedCV, error) {
	fileType := strings.ToLower(filepath.Ext(filename))
	switch fileType {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt":
	default:
		return nil, apperrors.NewCVExtractionFailed(fmt.Sprintf("unsupported file type: %s", fileType))
	}

	if err := os.MkdirAll(e.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	// Staged under a generated name so concurrent uploads of the same
	// filename cannot collide.
	filePath := filepath.Join(e.uploadsDir, uuid.New().String()+fileType)
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(filePath)
	defer file.Close()

	size, err := io.Copy(file, io.LimitReader(reader, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if size > MaxUploadBytes {
		return nil, apperrors.NewCVExtractionFailed("file exceeds the 10MB upload limit")
	}

	var text string
	switch fileType {
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return nil, apperrors.NewCVExtractionFailed(err.Error())
		}
		text = res.Body
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewCVExtractionFailed("no text content found in file")
	}

	return &ExtractedCV{
		Filename: filename,
		FileType: fileType,
		FileSize: size,
		Text:     text,
	}, nil
}
