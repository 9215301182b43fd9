package bot

// Command constants for Telegram bot commands.
const (
	CommandStart   = "/start"
	CommandStats   = "/stats"
	CommandWorkers = "/workers"
	CommandUnban   = "/unban"
)
