// Package contacts implements the account and token lifecycle for a small
// contacts service: signup with email confirmation, password login issuing an
// access/refresh token pair, refresh token rotation with server side
// revocation, and password recovery through emailed tokens.
//
// The package is built around three pieces:
//
//   - TokenService issues and validates the four signed token kinds
//     (access, refresh, email verification, password recovery). Tokens are
//     compact HMAC signed JWTs; each kind carries a scope claim so tokens
//     are never substitutable across kinds.
//   - Authenticator drives the account state transitions (signup, confirm,
//     login, refresh, recover) against an AccountDirectory, dispatching
//     notification email through a Dispatcher.
//   - Accounts is the bun backed AccountDirectory implementation.
//
// Contact records live in the addressbook subpackage, outbound email in
// notify, and avatar storage in avatar.
package contacts
