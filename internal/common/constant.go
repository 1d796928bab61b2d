package common

// TokenAuthLength is the length, in characters, of a raw app-specific
// token: 16 random bytes hex-encoded.
const TokenAuthLength = 32
