package cfg

import "github.com/crobledo/vulnwatch/app/alert"

type Cfg struct {
	// Input files
	ProductsPath string
	SourcesPath  string

	// Persistence
	DBPath  string
	LogFile string

	// Acceptance policy
	MinSeverity string
	RequireCVE  bool

	// Matching
	FuzzyThreshold int
	MinFuzzyLen    int

	// Fetching
	Timeout        int
	UserAgent      string
	ExtractContent bool

	// Delivery
	Send bool
	SMTP alert.SMTPConfig

	// Run control
	WorkerCount int
	Debug       bool
	Version     string
}
