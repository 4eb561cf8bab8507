package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"mealcheck/pkg/sheets"
)

// Environment variables. Values set in the environment override the TOML file.
const (
	EnvSpreadsheetID = "GOOGLE_SHEET_ID"
	EnvClientEmail   = "GOOGLE_SHEETS_CLIENT_EMAIL"
	EnvPrivateKey    = "GOOGLE_SHEETS_PRIVATE_KEY"
	EnvListenAddress = "LISTEN_ADDRESS"
	EnvLookupRate    = "LOOKUP_RATE"
	EnvLookupBurst   = "LOOKUP_BURST"
	EnvAuthUsers     = "AUTH_USERS"
	EnvAuthHeader    = "AUTH_IDENTITY_HEADER"
)

// DotEnvFiles are loaded, in order, before the environment is read. A
// variable already set is never overwritten.
var DotEnvFiles = []string{".env.local", ".env"}

type Google struct {
	SpreadsheetID string `toml:"spreadsheet_id" comment:"Spreadsheet ID or URL"`
	ClientEmail   string `toml:"client_email"`
	PrivateKey    string `toml:"private_key" comment:"PEM key, literal \\n sequences are accepted"`
}

type Server struct {
	ListenAddress string  `toml:"listen_address"`
	LookupRate    float64 `toml:"lookup_rate" comment:"Lookups per second allowed across all clients"`
	LookupBurst   int     `toml:"lookup_burst"`
}

type Auth struct {
	Users          map[string]string `toml:"users" comment:"Basic auth user names and passwords"`
	IdentityHeader string            `toml:"identity_header" comment:"Header set by an authenticating proxy, overrides users"`
}

type Store struct {
	Google Google
	Server Server
	Auth   Auth
}

type Config struct {
	Filename string
	Store    Store
}

// Write the current config out to a toml file.
func (c *Config) Save() error {
	b, err := toml.Marshal(c.Store)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Filename, b, 0600)
}

// Load the current config from a toml file.
func (c *Config) Load() error {
	b, err := os.ReadFile(c.Filename)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, &c.Store)
}

// Credentials returns the service account settings. They are validated when
// a spreadsheet client is built, not here, so a server can start and report
// the configuration problem per request.
func (c *Config) Credentials() sheets.Credentials {
	return sheets.Credentials{
		SpreadsheetID: c.Store.Google.SpreadsheetID,
		ClientEmail:   c.Store.Google.ClientEmail,
		PrivateKey:    c.Store.Google.PrivateKey,
	}
}

// New builds the configuration from the dotenv files, the optional TOML file
// and the environment. An empty filename skips the TOML file. A missing TOML
// file is created with the defaults.
func New(filename string) (*Config, error) {
	for _, f := range DotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	c := &Config{
		Filename: filename,
	}

	if filename != "" {
		if err := c.Load(); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			c.setDefaults()
			if err := c.Save(); err != nil {
				return nil, err
			}
		}
	}

	c.applyEnv()
	c.setDefaults()

	c.Store.Google.SpreadsheetID = sheets.SpreadsheetID(c.Store.Google.SpreadsheetID)
	c.Store.Google.PrivateKey = sheets.UnescapeKey(c.Store.Google.PrivateKey)

	return c, nil
}

func (c *Config) applyEnv() {
	c.Store.Google.SpreadsheetID = getEnvString(EnvSpreadsheetID, c.Store.Google.SpreadsheetID)
	c.Store.Google.ClientEmail = getEnvString(EnvClientEmail, c.Store.Google.ClientEmail)
	c.Store.Google.PrivateKey = getEnvString(EnvPrivateKey, c.Store.Google.PrivateKey)
	c.Store.Server.ListenAddress = getEnvString(EnvListenAddress, c.Store.Server.ListenAddress)
	c.Store.Server.LookupRate = getEnvFloat(EnvLookupRate, c.Store.Server.LookupRate)
	c.Store.Server.LookupBurst = getEnvInt(EnvLookupBurst, c.Store.Server.LookupBurst)
	c.Store.Auth.IdentityHeader = getEnvString(EnvAuthHeader, c.Store.Auth.IdentityHeader)
	if users := os.Getenv(EnvAuthUsers); users != "" {
		c.Store.Auth.Users = parseUsers(users)
	}
}

// parseUsers reads "name:password" pairs separated by commas. Entries without
// a name or password are skipped.
func parseUsers(v string) map[string]string {
	users := map[string]string{}
	for _, pair := range strings.Split(v, ",") {
		name, password, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || password == "" {
			continue
		}
		users[name] = password
	}
	return users
}

func (c *Config) setDefaults() {
	if c.Store.Server.ListenAddress == "" {
		c.Store.Server.ListenAddress = ":8080"
	}
	if c.Store.Server.LookupRate <= 0 {
		c.Store.Server.LookupRate = 5
	}
	if c.Store.Server.LookupBurst <= 0 {
		c.Store.Server.LookupBurst = 10
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
