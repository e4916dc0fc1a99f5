package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/shibing624/file-server/pkg/auth"
	"github.com/shibing624/file-server/pkg/logging"
)

// DefaultMaxFileSize caps uploads at 500 MiB unless configured otherwise.
const DefaultMaxFileSize = 500 * 1024 * 1024

// HistoryDisabled is the HISTORY_DB value that turns off the event log.
const HistoryDisabled = "off"

// defaultBlockedExtensions covers common executable and script types.
var defaultBlockedExtensions = []string{
	".exe", ".dll", ".bat", ".cmd", ".sh", ".ps1",
	".msi", ".scr", ".com", ".vbs", ".vbe", ".wsf",
	".jar", ".war", ".ear",
}

// Settings holds the service configuration loaded from the environment.
// It is constructed once at startup and treated as immutable afterwards.
type Settings struct {
	Host              string `env:"HOST,default=0.0.0.0"`
	Port              int    `env:"PORT,default=8008"`
	UploadPassword    string `env:"UPLOAD_PASSWORD"`
	StorageDir        string `env:"STORAGE_DIR"`
	BaseURL           string `env:"BASE_URL,default=http://localhost:8008"`
	MaxFileSize       int64  `env:"MAX_FILE_SIZE,default=524288000"`
	BlockedExtensions string `env:"BLOCKED_EXTENSIONS"`
	LogLevel          string `env:"LOG_LEVEL,default=INFO"`
	HistoryDB         string `env:"HISTORY_DB"`
	Extras            env.EnvSet

	// GeneratedPassword marks that UploadPassword was auto-generated because
	// the environment left it empty.
	GeneratedPassword bool

	blocked map[string]struct{}
}

// Load reads the service configuration from the environment. A .env file in
// the working directory is honored for variables not already set.
func Load(fs afero.Fs, logger *logging.Logger) (*Settings, error) {
	loadDotEnv(fs, logger)

	settings := &Settings{}
	extras, err := env.UnmarshalFromEnviron(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	settings.Extras = extras

	if settings.Port < 1 || settings.Port > 65535 {
		return nil, fmt.Errorf("PORT %d is out of range", settings.Port)
	}
	if settings.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", settings.MaxFileSize)
	}

	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")

	if settings.StorageDir == "" {
		settings.StorageDir = filepath.Join(xdg.DataHome, "file-server")
	}

	if settings.HistoryDB == "" {
		settings.HistoryDB = filepath.Join(xdg.StateHome, "file-server", "history.db")
	}

	if settings.UploadPassword == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate an upload password: %w", err)
		}
		settings.UploadPassword = secret
		settings.GeneratedPassword = true
		logger.Warn("UPLOAD_PASSWORD is not set, generated a temporary password")
	}

	settings.blocked = parseExtensions(settings.BlockedExtensions)

	return settings, nil
}

// loadDotEnv applies a .env file without overriding variables already set in
// the process environment.
func loadDotEnv(fs afero.Fs, logger *logging.Logger) {
	f, err := fs.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		logger.Warn("ignoring malformed .env file", "error", err)
		return
	}
	for key, value := range values {
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}

// parseExtensions turns a comma-separated extension list into a lookup set.
// Entries are lower-cased and normalized to dotted form; an empty list means
// the defaults.
func parseExtensions(raw string) map[string]struct{} {
	blocked := make(map[string]struct{})
	entries := defaultBlockedExtensions
	if strings.TrimSpace(raw) != "" {
		entries = strings.Split(raw, ",")
	}
	for _, entry := range entries {
		ext := strings.ToLower(strings.TrimSpace(entry))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		blocked[ext] = struct{}{}
	}
	return blocked
}

// IsBlockedExtension reports whether the given extension (dotted form, any
// case) is in the blocked set. Files without an extension are never blocked.
func (s *Settings) IsBlockedExtension(ext string) bool {
	if ext == "" {
		return false
	}
	_, found := s.blocked[strings.ToLower(ext)]
	return found
}

// ListenAddr returns the host:port the HTTP server binds to.
func (s *Settings) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// FileURL builds the public URL for a stored file.
func (s *Settings) FileURL(name string) string {
	return s.BaseURL + "/files/" + name
}

// HistoryEnabled reports whether the upload/delete event log is active.
func (s *Settings) HistoryEnabled() bool {
	return !strings.EqualFold(s.HistoryDB, HistoryDisabled)
}
