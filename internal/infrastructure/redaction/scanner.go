// Package redaction scans sanitized flow definitions for secrets that
// survived the sensitive-data pass.
package redaction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Scanner detects plaintext secrets in strings and documents.
// All fields are read-only after construction, making it safe for concurrent use.
type Scanner struct {
	patterns []namedPattern
	ignore   func(string) bool

	// Gitleaks detector for secret detection (222+ patterns)
	// If nil, only the regex patterns are used
	gitleaksDetector *detect.Detector
}

type namedPattern struct {
	rule string
	re   *regexp.Regexp
}

// Config holds the configuration for the Scanner.
type Config struct {
	// Custom patterns treated as secrets (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// If true, disable gitleaks detector and use only regex patterns
	DisableGitleaks bool
	// Ignore reports values that must never be flagged, such as secret references
	Ignore func(string) bool
}

// New creates a new Scanner with the given configuration.
func New(cfg Config) (*Scanner, error) {
	s := &Scanner{
		ignore:   cfg.Ignore,
		patterns: make([]namedPattern, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			return nil, err
		}
		s.gitleaksDetector = detector
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p.rule, err)
		}
		s.patterns = append(s.patterns, namedPattern{rule: p.rule, re: re})
	}

	for i, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		s.patterns = append(s.patterns, namedPattern{rule: "custom-pattern-" + strconv.Itoa(i), re: re})
	}

	return s, nil
}

// newGitleaksDetector creates a new gitleaks detector with default configuration.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Detect returns the rules matching input, sorted and deduplicated.
func (s *Scanner) Detect(input string) []string {
	if input == "" || (s.ignore != nil && s.ignore(input)) {
		return nil
	}

	seen := make(map[string]bool)
	if s.gitleaksDetector != nil {
		for _, finding := range s.gitleaksDetector.Detect(detect.Fragment{Raw: input}) {
			seen[finding.RuleID] = true
		}
	}
	for _, p := range s.patterns {
		if p.re.MatchString(input) {
			seen[p.rule] = true
		}
	}

	rules := make([]string, 0, len(seen))
	for rule := range seen {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	return rules
}

// ScanFlow implements ports.LeakScanner. It reports one finding per string
// field and rule, in document order.
func (s *Scanner) ScanFlow(gui *entities.FlowGuiConfig) ([]ports.LeakFinding, error) {
	if gui == nil {
		return nil, nil
	}

	data, err := json.Marshal(gui)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow for scanning: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode flow for scanning: %w", err)
	}

	var findings []ports.LeakFinding
	s.walk(doc, "", &findings)
	return findings, nil
}

// walk recursively traverses the document. Map keys are visited in sorted
// order so findings are deterministic.
func (s *Scanner) walk(data any, path string, findings *[]ports.LeakFinding) {
	switch v := data.(type) {
	case string:
		for _, rule := range s.Detect(v) {
			*findings = append(*findings, ports.LeakFinding{Path: path, Rule: rule})
		}

	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			next := k
			if path != "" {
				next = path + "." + k
			}
			s.walk(v[k], next, findings)
		}

	case []any:
		for i, item := range v {
			s.walk(item, path+"["+strconv.Itoa(i)+"]", findings)
		}
	}
}

// defaultPatterns contains regexes for secrets found in Azure connection
// strings, plus a few high-confidence generic ones.
var defaultPatterns = []struct {
	rule    string
	pattern string
}{
	{rule: "azure-storage-account-key", pattern: `(?i)AccountKey=[^;\s"]+`},
	{rule: "azure-shared-access-key", pattern: `(?i)SharedAccessKey=[^;\s"]+`},
	{rule: "connection-string-password", pattern: `(?i)(?:^|;)\s*(?:Password|Pwd)=[^;\s"]+`},
	{rule: "aws-access-key-id", pattern: `\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`},
	{rule: "private-key", pattern: `-----BEGIN [A-Z ]+ PRIVATE KEY-----`},
}
