package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Uptivity/justsell-pos-sub002/api/responses"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	pkgredis "github.com/Uptivity/justsell-pos-sub002/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	replayRetention  = 24 * time.Hour
	inFlightLease    = 30 * time.Second
	maxReplayRequest = 1 << 20
)

// Only calls that create money movement or paper are replayable: a register that lost its
// connection mid-checkout resubmits with the same key and must not ring the sale twice.
var replayableRoutes = map[string]struct{}{
	http.MethodPost + " /api/transactions":            {},
	http.MethodPost + " /api/transactions/{id}/print": {},
}

type replayEntry struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// replayLedger is one Idempotency-Key's slot in redis.
type replayLedger struct {
	store pkgredis.IdempotencyStore
	key   string
}

func (l replayLedger) claim(ctx context.Context, fingerprint string) (bool, error) {
	lease, err := json.Marshal(replayEntry{InFlight: true, Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	return l.store.SetNX(ctx, l.key, string(lease), inFlightLease)
}

// lookup returns nil when the slot expired between the failed claim and this read.
func (l replayLedger) lookup(ctx context.Context) (*replayEntry, error) {
	raw, err := l.store.Get(ctx, l.key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := &replayEntry{}
	if err := json.Unmarshal([]byte(raw), entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l replayLedger) complete(ctx context.Context, entry replayEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, l.key, string(payload), replayRetention)
}

func (l replayLedger) release(ctx context.Context) error {
	return l.store.Del(ctx, l.key)
}

// Idempotency makes checkout and receipt printing safe to retry. A repeated key with the
// same body gets the first response back; a different body or a request still running gets
// 409 IDEMPOTENCY_KEY_REUSED. 5xx outcomes are not kept so the register can try again.
// Requests without the header are untouched.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" || store == nil || !isReplayable(r) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxReplayRequest))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			ledger := replayLedger{store: store, key: store.IdempotencyKey(callerScope(r), clientKey)}

			claimed, err := ledger.claim(ctx, fingerprint)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if !claimed {
				replay(ctx, ledger, logg, w, fingerprint)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.statusCode() >= http.StatusInternalServerError {
				logFailure(ctx, logg, "idempotency.release", ledger.release(ctx))
				return
			}
			logFailure(ctx, logg, "idempotency.persist", ledger.complete(ctx, replayEntry{
				Fingerprint: fingerprint,
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}))
		})
	}
}

func replay(ctx context.Context, ledger replayLedger, logg *logger.Logger, w http.ResponseWriter, fingerprint string) {
	entry, err := ledger.lookup(ctx)
	switch {
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	case entry == nil || entry.InFlight && entry.Fingerprint == fingerprint:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
		return
	case entry.Fingerprint != fingerprint:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request body"))
		return
	}

	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
}

func isReplayable(r *http.Request) bool {
	pattern := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		pattern = rc.RoutePattern()
	}
	_, ok := replayableRoutes[r.Method+" "+pattern]
	return ok
}

// callerScope keeps two registers that pick the same key from colliding.
func callerScope(r *http.Request) string {
	id, _ := IdentityFromContext(r.Context())
	return id.StoreID.String() + "|" + id.EmployeeID.String() + "|" + r.Method + " " + r.URL.Path
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
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

func (c *captureWriter) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil && err != nil {
		logg.Error(ctx, msg, err)
	}
}
