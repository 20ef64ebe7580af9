package domain

import (
	"path/filepath"
	"strings"
)

// SupportedExtension is the only file extension accepted for ingestion.
const SupportedExtension = ".txt"

// SourceFile is a named file offered for ingestion.
// Content holds the raw bytes before decoding.
type SourceFile struct {
	// Name is the file name; it becomes the document title.
	Name string

	// Content is the raw file content.
	Content []byte

	// ReadError is set when the source listed the file but could not read
	// it. Ingestion records such a file as failed and moves on.
	ReadError string
}

// IsSupported reports whether the file has the plain-text extension.
// The comparison ignores case.
func (f SourceFile) IsSupported() bool {
	return strings.EqualFold(filepath.Ext(f.Name), SupportedExtension)
}

// FileStatus is the outcome of ingesting one file.
type FileStatus string

// File outcomes.
const (
	// FileIngested means the file's chunks were stored.
	FileIngested FileStatus = "ingested"

	// FileSkipped means the file was not a supported text file.
	FileSkipped FileStatus = "skipped"

	// FileFailed means ingestion failed; nothing from the file was stored.
	FileFailed FileStatus = "failed"
)

// FileOutcome reports what happened to one file in an upload.
type FileOutcome struct {
	// Name is the file name.
	Name string `json:"name"`

	// Status is the outcome.
	Status FileStatus `json:"status"`

	// Chunks is the number of chunks created (0 unless ingested).
	Chunks int `json:"chunks"`

	// Error describes why the file was skipped or failed.
	Error string `json:"error,omitempty"`
}

// UploadResult summarises a multi-file ingestion.
// One failing file never aborts the others.
type UploadResult struct {
	// FilesProcessed is the number of files whose chunks were stored.
	FilesProcessed int `json:"totalFiles"`

	// TotalChunks is the number of chunks created across all files.
	TotalChunks int `json:"totalChunks"`

	// Files holds per-file outcomes in input order.
	Files []FileOutcome `json:"files"`
}

// Skipped returns the outcomes of skipped files.
func (r *UploadResult) Skipped() []FileOutcome {
	return r.filter(FileSkipped)
}

// Failed returns the outcomes of failed files.
func (r *UploadResult) Failed() []FileOutcome {
	return r.filter(FileFailed)
}

func (r *UploadResult) filter(status FileStatus) []FileOutcome {
	var out []FileOutcome
	for _, f := range r.Files {
		if f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

// Record appends an outcome and updates the totals.
func (r *UploadResult) Record(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	if outcome.Status == FileIngested {
		r.FilesProcessed++
		r.TotalChunks += outcome.Chunks
	}
}

// Document is a decoded text document ready for chunking.
type Document struct {
	// Title is the logical document name.
	Title string

	// Content is the decoded UTF-8 text.
	Content string
}

// IngestOptions controls how an ingestion treats existing chunks.
type IngestOptions struct {
	// Replace deletes the title's existing chunks before inserting.
	Replace bool
}
