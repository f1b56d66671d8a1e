package common

// SessionCookieName is the cookie that carries the signed admin session token.
const SessionCookieName = "auth_tkt"

// MaxTitleLength is the longest entry title accepted, in characters.
const MaxTitleLength = 128
