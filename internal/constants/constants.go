package constants

import "time"

var APIConfig = struct {
	EnrichPath         string
	ConfirmProfilePath string
	FullProfilePath    string
	DefaultTimeout     time.Duration
}{
	EnrichPath:         "/api/enrich",
	ConfirmProfilePath: "/api/confirm_profile",
	FullProfilePath:    "/api/full_profile",
	DefaultTimeout:     30 * time.Second,
}

var SessionConfig = struct {
	CookieName     string
	DefaultTTL     time.Duration
	SweepInterval  time.Duration
	RedisKeyPrefix string
}{
	CookieName:     "enrich_session",
	DefaultTTL:     30 * time.Minute,
	SweepInterval:  time.Minute,
	RedisKeyPrefix: "enrich:session:",
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 5,
	ResetTimeout:     30 * time.Second,
}

var ServerConfig = struct {
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxFormBytes      int64
}{
	ReadHeaderTimeout: 10 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	MaxFormBytes:      16 << 10,
}

// Messages are the fixed user-visible strings of the flow.
var Messages = struct {
	DefaultURLPrompt   string
	NoneMatchedPrompt  string
	UnexpectedResponse string
	EnrichFailed       string
	ConfirmFailed      string
	FullProfileFailed  string
	Generic            string
	NameRequired       string
	URLRequired        string
	ServiceUnavailable string
	StaleCandidate     string
}{
	DefaultURLPrompt:   "Please provide a social URL",
	NoneMatchedPrompt:  "None matched. Please provide your LinkedIn profile URL to confirm.",
	UnexpectedResponse: "Unexpected response from server",
	EnrichFailed:       "Enrichment failed",
	ConfirmFailed:      "Confirmation failed",
	FullProfileFailed:  "Failed to get full profile",
	Generic:            "An error occurred",
	NameRequired:       "Name is required",
	URLRequired:        "A profile URL is required",
	ServiceUnavailable: "Enrichment service unavailable",
	StaleCandidate:     "That candidate is no longer listed. Please choose again.",
}
