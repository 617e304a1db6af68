package cfg

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/crobledo/vulnwatch/app/alert"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input files
	ProductsPath string `long:"products" env:"PRODUCTS_PATH" default:"./products.xlsx" description:"Path to the product catalog workbook"`
	SourcesPath  string `long:"sources" env:"SOURCES_PATH" default:"./sources.tsv" description:"Path to the tab-separated source list"`

	// Persistence
	DBPath  string `long:"db-path" env:"DB_PATH" default:"./vulnwatch.db" description:"Path to the SQLite alert database"`
	LogFile string `long:"log-file" env:"LOG_FILE" description:"Append each alert to this CSV audit log (optional)"`

	// Acceptance policy
	MinSeverity string `long:"min-severity" env:"MIN_SEVERITY" default:"MEDIUM" description:"Minimum severity to alert on (LOW, MEDIUM, HIGH, CRITICAL)"`
	AllowNoCVE  bool   `long:"allow-no-cve" env:"ALLOW_NO_CVE" description:"Alert on mentions without a CVE identifier"`

	// Matching
	FuzzyThreshold int `long:"fuzzy-threshold" env:"FUZZY_THRESHOLD" default:"82" description:"Partial-ratio score (0-100) required for a fuzzy product match"`
	MinFuzzyLen    int `long:"min-fuzzy-len" env:"MIN_FUZZY_LEN" default:"5" description:"Minimum product name length eligible for fuzzy matching"`

	// Fetching
	Timeout        int    `long:"timeout" env:"FETCH_TIMEOUT" default:"25" description:"HTTP fetch timeout in seconds"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"VulnWatch/1.0" description:"User agent string for HTTP requests"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Follow entry links and scan the extracted article text too"`

	// Delivery
	Send       bool   `long:"send" env:"SEND_EMAIL" description:"Deliver alerts over SMTP instead of printing them"`
	ConfigFile string `long:"config" env:"CONFIG_FILE" description:"YAML file with the SMTP delivery settings"`

	// Run control
	WorkerCount int  `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of concurrent source scans"`
	Debug       bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// fileCfg is the YAML shape of the optional config file. Only delivery
// settings live there; everything else is flags or environment.
type fileCfg struct {
	SMTP alert.SMTPConfig `yaml:"smtp"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ProductsPath:   raw.ProductsPath,
		SourcesPath:    raw.SourcesPath,
		DBPath:         raw.DBPath,
		LogFile:        raw.LogFile,
		MinSeverity:    raw.MinSeverity,
		RequireCVE:     !raw.AllowNoCVE,
		FuzzyThreshold: raw.FuzzyThreshold,
		MinFuzzyLen:    raw.MinFuzzyLen,
		Timeout:        raw.Timeout,
		UserAgent:      raw.UserAgent,
		ExtractContent: raw.ExtractContent,
		Send:           raw.Send,
		WorkerCount:    raw.WorkerCount,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if raw.ConfigFile != "" {
		smtp, err := loadFileCfg(raw.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.SMTP = smtp
	}

	if cfg.Send {
		if err := validateSMTP(cfg.SMTP); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadFileCfg(path string) (alert.SMTPConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return alert.SMTPConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileCfg
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return alert.SMTPConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc.SMTP, nil
}

func validateSMTP(smtp alert.SMTPConfig) error {
	if smtp.Host == "" {
		return fmt.Errorf("--send requires an SMTP host: set smtp.host in the config file")
	}
	if smtp.From == "" || len(smtp.To) == 0 {
		return fmt.Errorf("--send requires smtp.from and at least one smtp.to address")
	}
	return nil
}
