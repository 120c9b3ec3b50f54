package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gmail     GmailConfig     `mapstructure:"gmail"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GmailConfig holds Gmail API / IMAP mailbox configuration
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
	SearchQuery  string `mapstructure:"search_query"`
	Label        string `mapstructure:"label"`
	UseIMAP      bool   `mapstructure:"use_imap"`
	IMAPHost     string `mapstructure:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port"`
	IMAPUser     string `mapstructure:"imap_user"`
	IMAPPassword string `mapstructure:"imap_password"`
}

// SheetsConfig holds the destination spreadsheet configuration.
// An empty spreadsheet ID selects the in-memory store (dry run).
type SheetsConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	SheetName     string `mapstructure:"sheet_name"`
	NameColumn    int    `mapstructure:"name_column"`
	EmailColumn   int    `mapstructure:"email_column"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes   int `mapstructure:"interval_minutes"`
	MaxMessagesPerRun int `mapstructure:"max_messages_per_run"`
}

// ParserConfig carries everything the extraction cascade needs: per-field
// label synonyms, the celebrant roster, and the form-notification markers.
// It is passed to the parser constructors explicitly; nothing here is global.
type ParserConfig struct {
	NameFields        []string `mapstructure:"name_fields"`
	EmailFields       []string `mapstructure:"email_fields"`
	CelebratingFields []string `mapstructure:"celebrating_fields"`
	NotesFields       []string `mapstructure:"notes_fields"`
	Roster            []string `mapstructure:"roster"`
	FormMarkers       []string `mapstructure:"form_markers"`
	NotesPlaceholder  string   `mapstructure:"notes_placeholder"`
}

// NotifyConfig holds operator notification settings
type NotifyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	OperatorEmail string `mapstructure:"operator_email"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Env vars deliver list values as one comma-separated string
	config.Parser.Roster = splitCommaEntries(config.Parser.Roster)
	config.Parser.FormMarkers = splitCommaEntries(config.Parser.FormMarkers)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("gmail.search_query", "subject:RSVP")
	viper.SetDefault("gmail.label", "rsvp-processed")
	viper.SetDefault("gmail.use_imap", false)
	viper.SetDefault("gmail.imap_host", "imap.gmail.com")
	viper.SetDefault("gmail.imap_port", 993)

	viper.SetDefault("sheets.sheet_name", "Sheet1")
	viper.SetDefault("sheets.name_column", 0)
	viper.SetDefault("sheets.email_column", 1)

	viper.SetDefault("scheduler.interval_minutes", 15)
	viper.SetDefault("scheduler.max_messages_per_run", 50)

	viper.SetDefault("parser.name_fields", []string{"name", "full name", "guest name"})
	viper.SetDefault("parser.email_fields", []string{"email", "e-mail", "email address"})
	viper.SetDefault("parser.celebrating_fields", []string{"celebrating", "attending for", "honoree", "celebrant"})
	viper.SetDefault("parser.notes_fields", []string{"notes", "note", "comments", "message"})
	viper.SetDefault("parser.roster", []string{})
	viper.SetDefault("parser.form_markers", []string{"New submission from"})
	viper.SetDefault("parser.notes_placeholder", "Extracted from email body")

	viper.SetDefault("notify.enabled", false)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Gmail
	viper.BindEnv("gmail.client_id", "GMAIL_CLIENT_ID")
	viper.BindEnv("gmail.client_secret", "GMAIL_CLIENT_SECRET")
	viper.BindEnv("gmail.refresh_token", "GMAIL_REFRESH_TOKEN")
	viper.BindEnv("gmail.user_email", "GMAIL_USER_EMAIL")
	viper.BindEnv("gmail.search_query", "GMAIL_SEARCH_QUERY")
	viper.BindEnv("gmail.label", "GMAIL_LABEL")
	viper.BindEnv("gmail.use_imap", "GMAIL_USE_IMAP")
	viper.BindEnv("gmail.imap_host", "GMAIL_IMAP_HOST")
	viper.BindEnv("gmail.imap_port", "GMAIL_IMAP_PORT")
	viper.BindEnv("gmail.imap_user", "GMAIL_IMAP_USER")
	viper.BindEnv("gmail.imap_password", "GMAIL_IMAP_PASSWORD")

	// Sheets
	viper.BindEnv("sheets.spreadsheet_id", "SHEETS_SPREADSHEET_ID")
	viper.BindEnv("sheets.sheet_name", "SHEETS_SHEET_NAME")

	// Scheduler
	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
	viper.BindEnv("scheduler.max_messages_per_run", "SCHEDULER_MAX_MESSAGES_PER_RUN")

	// Parser
	viper.BindEnv("parser.roster", "PARSER_ROSTER")
	viper.BindEnv("parser.form_markers", "PARSER_FORM_MARKERS")

	// Notifications
	viper.BindEnv("notify.enabled", "NOTIFY_ENABLED")
	viper.BindEnv("notify.operator_email", "NOTIFY_OPERATOR_EMAIL")
}

// splitCommaEntries expands entries like "Ada Okafor,Bola Ahmed" into
// separate trimmed values
func splitCommaEntries(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if !c.Gmail.UseIMAP {
		if c.Gmail.ClientID == "" || c.Gmail.ClientSecret == "" || c.Gmail.RefreshToken == "" {
			return fmt.Errorf("Gmail OAuth2 credentials are required when not using IMAP")
		}
	} else {
		if c.Gmail.IMAPUser == "" || c.Gmail.IMAPPassword == "" {
			return fmt.Errorf("IMAP credentials are required when using IMAP")
		}
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	if c.Scheduler.MaxMessagesPerRun <= 0 {
		return fmt.Errorf("scheduler max messages per run must be greater than 0")
	}

	if c.Notify.Enabled && c.Notify.OperatorEmail == "" {
		return fmt.Errorf("operator email is required when notifications are enabled")
	}

	return nil
}
