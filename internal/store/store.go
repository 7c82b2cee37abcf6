// Package store persists one folder per synthesis request: the request
// metadata, each provider's audio artifact, and the recorded preference.
// The on-disk layout is data/<uuid>/request.json plus <provider>.<ext>
// files and an optional result.json.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
	"github.com/Johnxjp/tts-evaluation/internal/tts"
)

const (
	requestFile       = "request.json"
	resultFile        = "result.json"
	legacyRequestFile = "request.txt"
)

// Store owns the on-disk request layout under baseDir. Artifact writes for
// distinct providers land in distinct files, so concurrent saves within one
// request need no locking.
type Store struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

// Request is the durable request-half of a generation record, written once
// at creation and never mutated.
type Request struct {
	Timestamp        string         `json:"timestamp"`
	UUID             string         `json:"uuid"`
	Text             string         `json:"text"`
	ProviderSettings []tts.Settings `json:"provider_settings"`
}

// Result is the preference record stored next to the request metadata.
type Result struct {
	Text       string `json:"text"`
	Preference string `json:"preference"`
}

// CreateRequest allocates a fresh UUID, creates its folder, and writes the
// request metadata. The JSON lands via temp file + rename, so a concurrent
// reader sees either no record or a complete one.
func (s *Store) CreateRequest(text string, settings []tts.Settings) (*Request, error) {
	req := &Request{
		Timestamp:        time.Now().Format(time.RFC3339),
		UUID:             uuid.NewString(),
		Text:             text,
		ProviderSettings: settings,
	}
	dir := s.dir(req.UUID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create request folder: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(dir, requestFile), req); err != nil {
		return nil, err
	}
	return req, nil
}

// SaveArtifact writes one provider's audio under the request folder, named
// after the normalized provider name and detected format. Saving twice for
// the same provider overwrites; distinct providers never share a file.
func (s *Store) SaveArtifact(req *Request, providerName string, format audio.Format, data []byte) (string, error) {
	filename := NormalizeProviderName(providerName) + "." + format.Ext()
	path := filepath.Join(s.dir(req.UUID), filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", filename, err)
	}
	return path, nil
}

// SavePreference records which provider the user judged best for a request.
// Calling it again overwrites the previous choice; no history is kept. The
// provider must appear in the request's recorded settings, except for
// legacy records that carry none.
func (s *Store) SavePreference(id, providerName string) error {
	req, err := s.readRequest(s.dir(id))
	if err != nil {
		return fmt.Errorf("load request %s: %w", id, err)
	}
	if len(req.ProviderSettings) > 0 {
		known := false
		for _, ps := range req.ProviderSettings {
			if ps.Name == providerName {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("provider %q was not part of request %s", providerName, id)
		}
	}
	res := Result{Text: req.Text, Preference: providerName}
	return writeJSONAtomic(filepath.Join(s.dir(id), resultFile), res)
}

// Artifact is one audio file discovered in a request folder.
type Artifact struct {
	Provider string // normalized name stem, e.g. "inworld_ai"
	Format   audio.Format
	Path     string
}

// Summary is the listing view of one stored request.
type Summary struct {
	ID               string
	CreatedAt        time.Time
	Text             string
	ProviderSettings []tts.Settings
	Preference       string
	Artifacts        []Artifact
}

// ListRecent returns up to limit summaries, newest first. Folders that are
// malformed or only partially written are skipped silently; they are logged
// at debug and never surfaced as errors.
func (s *Store) ListRecent(limit int) ([]Summary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sum, err := s.readSummary(entry.Name())
		if err != nil {
			s.logger.Debug("skipping unreadable request folder", "id", entry.Name(), "error", err)
			continue
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// NormalizeProviderName lower-cases a display name and replaces spaces with
// underscores, yielding the artifact filename stem.
func NormalizeProviderName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (s *Store) dir(id string) string { return filepath.Join(s.baseDir, id) }

func (s *Store) readSummary(id string) (Summary, error) {
	dir := s.dir(id)
	sum := Summary{ID: id}

	req, err := s.readRequest(dir)
	switch {
	case err == nil:
		ts, err := parseTimestamp(req.Timestamp)
		if err != nil {
			return Summary{}, err
		}
		sum.CreatedAt = ts
		sum.Text = req.Text
		sum.ProviderSettings = req.ProviderSettings
	case errors.Is(err, os.ErrNotExist):
		// Fall back to the plain-text format used before request.json.
		ts, text, lerr := readLegacyRequest(filepath.Join(dir, legacyRequestFile))
		if lerr != nil {
			return Summary{}, lerr
		}
		sum.CreatedAt = ts
		sum.Text = text
	default:
		return Summary{}, err
	}

	if res, err := s.readResult(dir); err == nil {
		sum.Preference = res.Preference
	}
	sum.Artifacts = listArtifacts(dir)
	return sum, nil
}

func (s *Store) readRequest(dir string) (*Request, error) {
	data, err := os.ReadFile(filepath.Join(dir, requestFile))
	if err != nil {
		return nil, err
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", requestFile, err)
	}
	if req.Timestamp == "" || req.UUID == "" {
		return nil, fmt.Errorf("incomplete %s", requestFile)
	}
	return &req, nil
}

func (s *Store) readResult(dir string) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(dir, resultFile))
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse %s: %w", resultFile, err)
	}
	return &res, nil
}

// readLegacyRequest parses the old fixed-layout text format: a "Timestamp:"
// line, then the request text from the fourth line on. Legacy records carry
// no provider settings.
func readLegacyRequest(path string) (time.Time, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, "", err
	}

	lines := strings.Split(string(data), "\n")
	var ts time.Time
	var text strings.Builder
	for i, line := range lines {
		if strings.HasPrefix(line, "Timestamp:") {
			ts, err = parseTimestamp(strings.TrimSpace(strings.TrimPrefix(line, "Timestamp:")))
			if err != nil {
				return time.Time{}, "", err
			}
		} else if i >= 3 {
			text.WriteString(line)
			text.WriteString("\n")
		}
	}
	if ts.IsZero() {
		return time.Time{}, "", fmt.Errorf("no timestamp in %s", legacyRequestFile)
	}
	return ts, strings.TrimSpace(text.String()), nil
}

// timestampLayouts covers our own RFC 3339 writes plus the zone-less ISO
// strings legacy records were written with.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func listArtifacts(dir string) []Artifact {
	var artifacts []Artifact
	for _, format := range []audio.Format{audio.FormatMP3, audio.FormatWAV} {
		matches, _ := filepath.Glob(filepath.Join(dir, "*."+format.Ext()))
		for _, m := range matches {
			stem := strings.TrimSuffix(filepath.Base(m), "."+format.Ext())
			artifacts = append(artifacts, Artifact{Provider: stem, Format: format, Path: m})
		}
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Provider < artifacts[j].Provider })
	return artifacts
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
