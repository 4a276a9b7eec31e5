// Package domain contains the core business entities for railway document
// analysis: documents, chunks, analysis results, classification categories
// and chat turns. It has no dependencies on adapters or infrastructure.
package domain
