// Package token mints and verifies the compact signed bearer tokens the
// engine hands to clients. A token carries only the session reference and
// its own validity window — never principal data. That asymmetry is the
// security boundary that makes revocation meaningful: a stolen token is
// useless once the durable session record is gone.
//
// # Verification is a three-way result, not an error
//
// Verify distinguishes three outcomes because the engine reacts differently
// to each:
//
//   - OutcomeValid: signature good, inside the validity window.
//   - OutcomeExpired: signature good, expiry passed — the decoded session
//     reference is still trustworthy and drives transparent rotation.
//   - OutcomeInvalid: bad signature or malformed — terminal, no store access.
package token
