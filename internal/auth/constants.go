package auth

// SessionCookieName is the httpOnly cookie carrying the session token.
// Shared by HTTP middleware and the websocket upgrade.
const SessionCookieName = "cs_session"
