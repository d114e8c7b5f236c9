// Package services implements the client for the equipment statistics HTTP API.
//
// # Client Interface
//
// [Client] is the remote collaborator used by the session and dashboard packages:
//   - Login: POST /login/ with {username, password}, returns {token, last_uploads?}
//   - Register: POST /register/ with {username, password}, returns {token}
//   - UploadCSV: POST /upload_csv/ multipart field "file", returns overall and per-type statistics
//
// [APIService] implements it over net/http. Failure bodies carry {"error": "..."}; the message is surfaced as-is
// and a generic fallback is used when the body has none.
//
// # Authentication
//
// Upload requests carry "Authorization: Token <token>". The header is set by an [oauth2.Transport] wrapping the
// configured transport with a static token whose type is "Token".
//
// # Boundary Validation
//
// Server payloads are decoded into private wire types and converted to [models.UploadSummary] or [UploadStats]
// immediately. Numeric server ids become strings. An upload response without overall_stats or total_records is
// rejected as malformed. Recent uploads that fail validation are dropped and counted in [AuthResult.Skipped].
//
// # Error Handling
//
// Login and Register return [shared.AuthenticationError]; UploadCSV returns [shared.UploadError]. Both carry the
// HTTP status (0 for transport failures) and wrap the underlying cause when there is one.
//
// # Throttling
//
// [WithRateLimit] installs a [rate.Limiter] that every request waits on before it is sent.
package services
