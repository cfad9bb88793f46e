// Package flows assembles the document workflows from the step library and
// the generator: post turns a paper into a LinkedIn post, pdf2md converts a
// PDF into a markdown file and md2docx exports markdown through pandoc.
package flows
