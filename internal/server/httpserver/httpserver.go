package httpserver

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/tombowditch/ptpb/internal/config"
	"github.com/tombowditch/ptpb/internal/paste"
	"github.com/tombowditch/ptpb/internal/store"
)

// maxMemory is how much of a multipart form is held in memory before
// spilling to temp files.
const maxMemory = 8 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.Store
	publicURL string
	logger    logrus.FieldLogger
	limiter   Limiter
	now       func() time.Time
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithLimiter rate limits creates and updates per client IP. Without it
// writes are unlimited.
func WithLimiter(l Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// NewHandler creates a pb-compatible HTTP handler with all routes
// configured. publicURL prefixes the urls handed back to clients; when
// empty it is derived from each request's Host.
func NewHandler(s store.Store, publicURL string, logger logrus.FieldLogger, opts ...Option) http.Handler {
	srv := &Server{
		store:     s,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}

	r := httprouter.New()
	r.GET("/", srv.indexPage)
	r.GET("/:id", srv.getPaste)
	r.POST("/", srv.createPaste)
	r.POST("/:label", srv.createPaste)
	r.PUT("/:uuid", srv.updatePaste)
	r.DELETE("/:uuid", srv.deletePaste)

	return r
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	base := s.baseURL(r)
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(`pb - commandline pastebin

~> echo "hello" | curl -F c=@- ` + base + `
~> curl -F c=@notes.md -F p=1 -F sunset=3600 ` + base + `
~> curl -F c=@notes.md ` + base + `/~notes
~> curl -X PUT -F c=@notes.md ` + base + `/<uuid>
~> curl -X DELETE ` + base + `/<uuid>
`))
}

func (s *Server) getPaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	p, err := s.store.Get(id)
	if err != nil {
		s.storeError(w, err, "id", id)
		return
	}

	contentType := p.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(p.Body)
}

func (s *Server) createPaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer r.Body.Close()
	if !s.allow(w, r) {
		return
	}

	label := ps.ByName("label")
	if label != "" {
		if !strings.HasPrefix(label, paste.LabelPrefix) || len(label) == len(paste.LabelPrefix) {
			writeYAML(w, http.StatusNotFound, paste.Status(paste.StatusNotFound))
			return
		}
		label = strings.TrimPrefix(label, paste.LabelPrefix)
		if _, err := s.store.Get(paste.LabelPrefix + label); err == nil {
			writeYAML(w, http.StatusConflict, paste.Status(paste.StatusExists))
			return
		}
	}

	f, ok := s.readForm(w, r)
	if !ok {
		return
	}

	now := s.now()
	p := paste.New(f.body, f.contentType, f.private, label, now)
	p.SetSunset(f.sunset, now)

	// Generate unique ids and store atomically
	for tried := 0; tried < 10; tried++ {
		ok, err := s.store.Create(p)
		if err != nil {
			s.logger.WithError(err).Error("store create failed")
			writeYAML(w, http.StatusInternalServerError, paste.Status("error"))
			return
		}
		if ok {
			s.logger.WithFields(logrus.Fields{
				"uuid":   p.UUID,
				"id":     p.PublicID(),
				"remote": clientIP(r),
			}).Info("created paste")
			writeYAML(w, http.StatusOK, p.Metadata(s.baseURL(r), paste.StatusCreated))
			return
		}
		if label != "" {
			// Label was claimed between the check and the create.
			writeYAML(w, http.StatusConflict, paste.Status(paste.StatusExists))
			return
		}
		s.logger.WithField("short", p.Short).Debug("id collision, retrying")
		p.Reroll()
	}

	s.logger.Error("could not generate unique id after retries")
	writeYAML(w, http.StatusInternalServerError, paste.Status("could not generate id"))
}

func (s *Server) updatePaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer r.Body.Close()
	if !s.allow(w, r) {
		return
	}
	uuid := ps.ByName("uuid")

	p, err := s.store.Lookup(uuid)
	if err != nil {
		s.storeError(w, err, "uuid", uuid)
		return
	}

	f, ok := s.readForm(w, r)
	if !ok {
		return
	}

	p.Body = f.body
	p.ContentType = f.contentType
	p.Private = f.private
	p.SetSunset(f.sunset, s.now())

	if err := s.store.Update(p); err != nil {
		s.storeError(w, err, "uuid", uuid)
		return
	}
	s.logger.WithField("uuid", uuid).Info("updated paste")
	writeYAML(w, http.StatusOK, p.Metadata(s.baseURL(r), paste.StatusUpdated))
}

func (s *Server) deletePaste(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uuid := ps.ByName("uuid")

	p, err := s.store.Lookup(uuid)
	if err == nil {
		err = s.store.Delete(uuid)
	}
	if err != nil {
		s.storeError(w, err, "uuid", uuid)
		return
	}
	s.logger.WithField("uuid", uuid).Info("deleted paste")
	writeYAML(w, http.StatusOK, yaml.MapSlice{
		{Key: "status", Value: paste.StatusDeleted},
		{Key: "uuid", Value: p.UUID},
	})
}

// allow checks the write limit for the request's client. On refusal it has
// already written the response.
func (s *Server) allow(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	cip := clientIP(r)
	if s.limiter.Allow(cip) {
		return true
	}
	s.logger.WithField("remote", cip).Warn("rate limit exceeded")
	writeYAML(w, http.StatusTooManyRequests, paste.Status(paste.StatusRateLimited))
	return false
}

type form struct {
	body        []byte
	contentType string
	private     bool
	sunset      int64
}

// readForm parses the c, p and sunset fields. On failure it has already
// written the response.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (*form, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxPayloadSize+maxMemory)
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeYAML(w, http.StatusBadRequest, paste.Status("invalid form"))
		return nil, false
	}

	var f form
	if file, hdr, err := r.FormFile("c"); err == nil {
		defer file.Close()
		f.body, err = io.ReadAll(file)
		if err != nil {
			writeYAML(w, http.StatusBadRequest, paste.Status("error reading body"))
			return nil, false
		}
		f.contentType = hdr.Header.Get("Content-Type")
	} else if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		// Value parts and urlencoded forms carry no content type.
		f.body = []byte(r.FormValue("c"))
	} else {
		writeYAML(w, http.StatusBadRequest, paste.Status("invalid form"))
		return nil, false
	}

	if err := paste.Validate(f.body); err != nil {
		writeValidation(w, err)
		return nil, false
	}

	sunset, err := paste.ParseSunset(r.FormValue("sunset"))
	if err != nil {
		writeValidation(w, err)
		return nil, false
	}
	f.sunset = sunset

	p := r.FormValue("p")
	f.private = p != "" && p != "0" && p != "false"
	return &f, true
}

func (s *Server) storeError(w http.ResponseWriter, err error, field, value string) {
	if err == store.ErrNotFound {
		writeYAML(w, http.StatusNotFound, paste.Status(paste.StatusNotFound))
		return
	}
	s.logger.WithError(err).WithField(field, value).Error("store operation failed")
	writeYAML(w, http.StatusInternalServerError, paste.Status("error"))
}

func writeValidation(w http.ResponseWriter, err error) {
	if ve, ok := err.(*paste.ValidationError); ok {
		writeYAML(w, ve.StatusCode, paste.Status(ve.Message))
		return
	}
	writeYAML(w, http.StatusBadRequest, paste.Status(err.Error()))
}

func writeYAML(w http.ResponseWriter, status int, m yaml.MapSlice) {
	out, err := yaml.Marshal(m)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// clientIP extracts the real client IP, checking X-Forwarded-For first.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
