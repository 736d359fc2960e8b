// Package crm applies tag, custom field, and workflow actions to the CRM.
//
// The orchestrator commits locally first; CRM delivery happens after through
// the Emitter, which retries with exponential backoff and preserves
// per-contact ordering. A delivery that exhausts its retries is logged and
// dropped, never propagated back into contact state.
package crm
