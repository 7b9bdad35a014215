package paste

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	yaml "gopkg.in/yaml.v2"

	"github.com/tombowditch/ptpb/internal/config"
	"github.com/tombowditch/ptpb/internal/util/randutil"
)

// Response statuses.
const (
	StatusCreated     = "created"
	StatusUpdated     = "updated"
	StatusDeleted     = "deleted"
	StatusNotFound    = "not found"
	StatusExists      = "already exists"
	StatusRateLimited = "rate limit exceeded"
)

// LabelPrefix marks a vanity id in paths.
const LabelPrefix = "~"

// Paste is a stored paste.
type Paste struct {
	UUID        string
	Short       string
	Long        string
	Label       string
	Body        []byte
	ContentType string
	Private     bool
	Created     time.Time
	// ExpiresAt is zero for pastes without a sunset.
	ExpiresAt time.Time
}

// New builds a paste with fresh ids.
func New(body []byte, contentType string, private bool, label string, now time.Time) *Paste {
	return &Paste{
		UUID:        uuid.New().String(),
		Short:       randutil.ShortID(),
		Long:        randutil.LongID(),
		Label:       label,
		Body:        body,
		ContentType: contentType,
		Private:     private,
		Created:     now.UTC(),
	}
}

// Reroll replaces the generated ids after a collision.
func (p *Paste) Reroll() {
	p.Short = randutil.ShortID()
	p.Long = randutil.LongID()
}

// SetSunset makes the paste expire seconds after now. Zero clears it.
func (p *Paste) SetSunset(seconds int64, now time.Time) {
	if seconds <= 0 {
		p.ExpiresAt = time.Time{}
		return
	}
	p.ExpiresAt = now.Add(time.Duration(seconds) * time.Second).UTC()
}

// Expired reports whether the paste's sunset has passed.
func (p *Paste) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// IDs returns every id the paste can be fetched by.
func (p *Paste) IDs() []string {
	ids := []string{p.Short, p.Long}
	if p.Label != "" {
		ids = append(ids, LabelPrefix+p.Label)
	}
	return ids
}

// PublicID is the id used in the paste URL.
func (p *Paste) PublicID() string {
	switch {
	case p.Label != "":
		return LabelPrefix + p.Label
	case p.Private:
		return p.Long
	default:
		return p.Short
	}
}

// Digest is the hex SHA-1 of the body.
func (p *Paste) Digest() string {
	sum := sha1.Sum(p.Body)
	return hex.EncodeToString(sum[:])
}

// Metadata is the YAML mapping returned after a create or update.
func (p *Paste) Metadata(baseURL, status string) yaml.MapSlice {
	m := yaml.MapSlice{
		{Key: "date", Value: p.Created.Format(time.RFC3339)},
		{Key: "digest", Value: p.Digest()},
		{Key: "long", Value: p.Long},
		{Key: "short", Value: p.Short},
		{Key: "size", Value: len(p.Body)},
		{Key: "status", Value: status},
		{Key: "url", Value: strings.TrimSuffix(baseURL, "/") + "/" + p.PublicID()},
		{Key: "uuid", Value: p.UUID},
	}
	if p.Label != "" {
		m = append(m, yaml.MapItem{Key: "label", Value: p.Label})
	}
	if !p.ExpiresAt.IsZero() {
		m = append(m, yaml.MapItem{Key: "sunset", Value: p.ExpiresAt.Format(time.RFC3339)})
	}
	return m
}

// Status is a bare status response.
func Status(status string) yaml.MapSlice {
	return yaml.MapSlice{{Key: "status", Value: status}}
}

// ValidationError holds validation failure details.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks if the paste body is acceptable.
func Validate(body []byte) error {
	if len(body) == 0 {
		return &ValidationError{
			StatusCode: http.StatusBadRequest,
			Message:    "empty body",
		}
	}

	if len(body) > config.MaxPayloadSize {
		return &ValidationError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    "payload too big",
		}
	}

	return nil
}

// ParseSunset parses the sunset form field. An empty value means none.
func ParseSunset(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, &ValidationError{
			StatusCode: http.StatusBadRequest,
			Message:    "invalid sunset",
		}
	}
	return n, nil
}
