// Package domain models the records served by the disaster resilience API.
//
// # Tables
//
// Every entity lives in a table of the hosted relational store. The API never
// selects all columns: each entity declares the exact column list it reads,
// so columns added to the store later do not leak into responses.
//
//	instructions   id, title, content, disaster_type
//	kit_items      id, item_name, description, category
//	shelters       id, name, latitude, longitude, capacity, is_open
//	organizations  id, name, type, description, contact, email, website,
//	               address, latitude, longitude, is_active
//	aid_requests   id, requester_name, location_description, aid_needed,
//	               status, created_at, updated_at
//	sos_alerts     id, name, phone, location, emergency_type, message,
//	               status, created_at, updated_at
//
// # User-submitted records
//
// Aid requests and SOS alerts are append-only. The API builds the insert
// payload itself: user text is trimmed, status is set server-side
// ("pending" for aid requests, "active" for SOS alerts), and created_at and
// updated_at are both stamped with the same [Timestamp].
//
// Phone numbers are validated by digit count only: all non-digits are
// stripped and 10 to 15 digits must remain. "+1 (800) 555-0100" is valid;
// no country-code semantics are applied.
//
// # Record ids
//
// The hosted store assigns ids (bigint or uuid depending on the table
// definition); the SQLite store assigns uuids. [RecordID] keeps the raw JSON
// value so responses echo exactly what the store returned.
package domain
