// Package model contains domain models/data structures.
// Keep it minimal; no business logic here.
package model
