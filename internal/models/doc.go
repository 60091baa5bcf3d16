// Package models defines domain entities and persistence interfaces for the cratedex export tool.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): lightweight structs flowing through the export pipeline
//   - [Track] : Normalized saved-track metadata (one CSV row's base fields)
//   - [ExportRow] : Track merged with audio-analysis attributes and the Camelot code
//
// 2. Persistent Entities: database-backed records with lifecycle management
//   - [Run] : A completed export run (row counts, output path, timings)
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
