// Package client contains the client-side building blocks that talk to the
// user-directory backend and bootstrap local persistence.
//
// # Overview
//
//  1. Client is the transport-agnostic contract of the seven remote
//     operations: Login, ListUsers, AddUser, UpdateUser, ResetPassword,
//     UpdateProfileImage and DeleteUser.
//  2. HTTPClient implements it over REST + multipart. A round tripper adds
//     the bearer token and an X-Request-ID to every call; idempotent reads
//     are retried with exponential backoff; request counts and latencies
//     are exported as Prometheus metrics.
//  3. InitDatabase and RunMigrations open the local SQLite file and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Every failed operation returns a *RemoteError. Match its cause with
// errors.Is against ErrUnavailable (no response), ErrUnauthorized (401/403)
// or ErrRemoteFailure (any other non-2xx). ServerMessage extracts the
// backend's message, if any.
package client
