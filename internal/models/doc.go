// Package models defines the core domain models for the family ledger.
//
// # Obligation
//
// An Obligation is one debt between two family members: the debtor owes the
// creditor an amount (in minor units) for a described reason. It is a value
// decoded from one row of the backing worksheet, never a live object. Every
// change is expressed as a store operation keyed by the obligation ID.
//
// # Lifecycle
//
//	create ──► OPEN ──settle──► PAID
//	            │
//	            └──delete (entered in error)
//
// PAID is terminal. PaidAt is written once, together with the status change.
// NotifiedDueSoonAt is written once, after a reminder was delivered.
//
// # Dates
//
// Dates and timestamps are kept exactly as stored (ISO-8601 strings). Typed
// accessors parse them on demand, so rows written by older versions, or edited
// by hand in the spreadsheet, still decode.
package models
