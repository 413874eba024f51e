package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Storage-related log prefixes
const (
	LogStorageInit = Blue + "[Storage:Init]" + Reset
	LogStorage     = Blue + "[Storage]" + Reset
	LogBackup      = Blue + "[Storage:Backup]" + Reset
	LogFavorites   = Green + "[Favorites]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStatic = Cyan + "[Static]" + Reset
	LogHTTP   = Cyan + "[HTTP]" + Reset
)

// Upstream client log prefixes
const (
	LogSearch   = Blue + "[Search]" + Reset
	LogDetail   = Blue + "[Detail]" + Reset
	LogUpstream = Purple + "[Upstream]" + Reset
	LogSuccess  = Green + "[Success]" + Reset
)
