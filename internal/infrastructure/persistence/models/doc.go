// Package models contains the JSON document shapes stored in the document
// store. They are separate from domain entities so that the domain layer
// stays free of storage concerns and so that records written by older
// clients, with loosely typed fields, can still be read.
//
// Each model converts to and from its domain entity with ToDomain and a
// From<Entity> constructor.
package models
