// Package config provides the server configuration.
//
// Settings come from the environment (a .env file is loaded by the binary
// with godotenv before Load runs) and may be overridden by command line
// flags. Load validates the result and reports every problem at once.
//
// Variables:
//
//	HOST, PORT                         listen address (localhost:8080)
//	LOG_LEVEL, DEBUG                   zerolog level (info)
//	HIGHSCORE_BACKEND                  file, sqlite or none (file)
//	HIGHSCORE_FILE, HIGHSCORE_DB       store locations
//	MAX_HIGH_SCORES                    log length (20)
//	SESSION_TTL                        idle time before a session expires (24h)
//	SESSION_CLEANUP_INTERVAL           how often expired sessions are swept (1h)
//	MAX_SESSIONS                       live session cap, 0 for none
//	COOKIE_NAME, COOKIE_SECRET         browser session cookie
//	COOKIE_SECURE                      mark the cookie Secure
//	STATIC_DIR                         web client files
//	NGROK_ENABLED, NGROK_AUTHTOKEN     public tunnel
//	NGROK_DOMAIN
package config
