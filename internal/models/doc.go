// Package models defines domain entities and persistence interfaces for the rolesplit roster splitter.
//
// The package contains two categories of types:
//
// 1. Pipeline values: transient structs that live for one read → classify → export call chain
//   - [Cell] : A spreadsheet cell as a tagged variant (empty, text, number or raw bytes)
//   - [RawRow] : The five fixed-position cells of one roster line
//   - [Record] : A normalized person ready to be written out
//   - [Category] : faculty, student or other
//   - [Batch] : Records grouped by category in input order
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [ExportRun] : The outcome of writing one category file
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
