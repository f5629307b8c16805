// Package directus provides a client for the Directus item store holding the
// company catalogue (sheet piles and machinery) and the audit history.
//
// Only the REST items API is used:
//
//	GET  /items/shpunts        inventory matched by profile
//	GET  /items/machinery      equipment matched by work type
//	GET  /items/audit_history  a client's past audits
//	POST /items/audit_history  record a completed audit
//
// Requests are throttled with a token bucket and carry the admin bearer
// token when one is configured. Nothing is substituted when the store is
// unreachable: callers receive the error.
package directus
