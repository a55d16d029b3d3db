package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in the
// application: strings for identifiers, secrets and URLs, ints for limits.
type Config struct {
	Env                string   // application environment (e.g. "dev", "prod")
	Port               string   // HTTP port to listen on
	DBUser             string   // database username
	DBPass             string   // database password (optional)
	DBHost             string   // database host address
	DBPort             string   // database port number
	DBName             string   // database name
	TicketBaseURL      string   // base URL of the ticketing site pages being scraped
	OpenAIAPIKey       string   // API key for the chat-completions endpoint
	OpenAIBaseURL      string   // base URL of the completions API (overridable for proxies)
	OpenAIModel        string   // model name used for sentiment classification
	SentimentBatchSize int      // max reviews labelled per enrichment run
	PromoPhrases       []string // description substrings filtered out of review listings
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),             // environment (dev/test/prod)
		Port:               must("APP_PORT"),            // port to bind the HTTP server
		DBUser:             must("DB_USER"),             // database user
		DBPass:             os.Getenv("DB_PASS"),        // database password (empty allowed)
		DBHost:             must("DB_HOST"),             // database host
		DBPort:             must("DB_PORT"),             // database port
		DBName:             must("DB_NAME"),             // database name
		TicketBaseURL:      getenv("TICKET_BASE_URL", "https://tickets.interpark.com"),
		OpenAIAPIKey:       must("OPENAI_API_KEY"),      // completions API key
		OpenAIBaseURL:      getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:        getenv("OPENAI_MODEL", "gpt-3.5-turbo"),
		SentimentBatchSize: envInt("SENTIMENT_BATCH_SIZE", 5),
		PromoPhrases:       envList("REVIEW_PROMO_PHRASES"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envList splits a comma-separated environment variable into trimmed,
// non-empty values.  An unset variable yields a nil slice.
func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
