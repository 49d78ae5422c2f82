package cache

import "strconv"

// Key builders for the persisted state layout of spec.md §6. Centralizing
// them here keeps every component's cache keys consistent without a
// second source of truth for the string formats.

func DIDToSnowflakeKey(did string) string        { return "did_to_snowflake:" + did }
func SnowflakeToDIDKey(id int64) string           { return "snowflake_to_did:" + strconv.FormatInt(id, 10) }
func ATURIToSnowflakeKey(aturi string) string     { return "at_uri_to_snowflake:" + aturi }
func SnowflakeToATURIKey(id int64) string         { return "snowflake_to_at_uri:" + strconv.FormatInt(id, 10) }
func HandleToDIDKey(handle string) string         { return "handle_to_did:" + handle }
func OAuthAppKey(clientID string) string          { return "oauth:app:" + clientID }
func OAuthCodeKey(code string) string             { return "oauth:code:" + code }
func OAuthTokenKey(accessToken string) string     { return "oauth:token:" + accessToken }
func SessionKey(did string) string                { return "session:" + did }
func RateLimitUserKey(tokenPrefix string) string  { return "rate_limit:user:" + tokenPrefix }
func RateLimitIPKey(ip string) string             { return "rate_limit:ip:" + ip }
