// Package pipeline implements the Markdown-to-HTML conversion pipeline.
//
// This package handles the per-document stages:
//   - Front matter splitting (YAML between "---" delimiters)
//   - Markdown preprocessing (line normalization)
//   - Markdown to HTML conversion via Goldmark, with heading attributes,
//     permalink-ready heading ids and syntax highlighting
//   - Table of contents synthesis from a <!-- toc --> marker
//   - Page template rendering with a per-name template cache
//
// Batch processing, output paths and file I/O are handled by the root
// md2site package and the build runner. Every stage here works on one
// document and holds no state shared between documents, except the
// TemplateRenderer cache which is guarded for concurrent use.
package pipeline
