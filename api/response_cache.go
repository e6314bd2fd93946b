package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rpupo63/portfolio-cms/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// cache tags; every mutation also drops tagPortfolio
const (
	tagProjects        = "projects"
	tagCertificates    = "certificates"
	tagTechStacks      = "techstacks"
	tagWorkExperiences = "work-experiences"
	tagAbout           = "about"
	tagEducations      = "educations"
	tagPortfolio       = "portfolio"
)

type responseCache struct {
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

func newResponseCache(store cache.Store, ttl time.Duration) responseCache {
	return responseCache{
		store:  store,
		ttl:    ttl,
		logger: log.With().Str("handlerName", "responseCache").Logger(),
	}
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// cacheKey keeps only the query parameters the route reads. ok is false when
// the request carries any other parameter; such requests are not cached.
func cacheKey(u *url.URL, params []string) (string, bool) {
	q := u.Query()
	kept := make(url.Values, len(q))
	for _, name := range params {
		if v, present := q[name]; present {
			kept[name] = v
		}
	}
	if len(kept) != len(q) {
		return "", false
	}
	return u.Path + "?" + kept.Encode(), true
}

// middleware serves GET responses from the store and records 200s under tags.
// params names the query parameters that select a distinct response.
func (c responseCache) middleware(params []string, tags ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.store == nil || r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key, ok := cacheKey(r.URL, params)
			if !ok {
				cacheLookups.WithLabelValues("bypass").Inc()
				w.Header().Set("X-Cache", "BYPASS")
				next.ServeHTTP(w, r)
				return
			}

			entry, ok, err := c.store.Get(r.Context(), key)
			if err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
			}
			if ok {
				cacheLookups.WithLabelValues("hit").Inc()
				w.Header().Set("Content-Type", entry.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(entry.Status)
				_, _ = w.Write(entry.Body)
				return
			}
			cacheLookups.WithLabelValues("miss").Inc()

			// read before rendering so an invalidation during the handler wins
			generation, err := c.store.Generation(r.Context(), r.URL.Path, tags)
			if err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("Cache generation lookup failed")
				w.Header().Set("X-Cache", "MISS")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-Cache", "MISS")
			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if cw.status != http.StatusOK {
				return
			}
			err = c.store.Set(r.Context(), key, r.URL.Path, tags, cache.Entry{
				Status:      cw.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
				StoredAt:    time.Now(),
			}, c.ttl, generation)
			switch {
			case errors.Is(err, cache.ErrStale):
				cacheLookups.WithLabelValues("stale").Inc()
				c.logger.Debug().Str("key", key).Msg("Skipped caching a response rendered before an invalidation")
			case err != nil:
				c.logger.Warn().Err(err).Str("key", key).Msg("Cache store failed")
			}
		})
	}
}

// invalidate drops the given tags plus the portfolio aggregate. Failures are
// logged; a mutation that already committed is not reported as failed.
func (c responseCache) invalidate(ctx context.Context, tags ...string) {
	if c.store == nil {
		return
	}
	for _, tag := range append(tags, tagPortfolio) {
		n, err := c.store.InvalidateTag(ctx, tag)
		if err != nil {
			c.logger.Warn().Err(err).Str("tag", tag).Msg("Cache invalidation failed")
			continue
		}
		cacheInvalidations.WithLabelValues("tag").Add(float64(n))
	}
}
