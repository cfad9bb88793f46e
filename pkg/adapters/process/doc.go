// Package process runs allow-listed external commands for document steps:
// PDF text extraction, DOCX export through pandoc and clipboard copy.
package process
