// Package client provides the authenticated request dispatcher.
//
// Every call reads the current session, sends JSON to baseURL+endpoint with
// the bearer credential attached (when there is one), and normalizes the
// outcome:
//
//   - 2xx: the JSON body is decoded into the caller's value
//   - non-2xx: a *Error carrying the status, a message and the remote payload
//   - transport failure: the Doer's error, unchanged
//
// Only GET, POST, PUT and DELETE are supported.
package client
