package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type contextKey string

const (
	contextKeyUserID = contextKey("userID")
	contextKeyStaff  = contextKey("staff")
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireUser trusts the identity headers set by the upstream gateway.
// Authentication itself is out of scope for this service.
func (app *Application) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(r.Header.Get("X-User-ID"))
		if err != nil || userID < 1 {
			app.unauthorizedResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		ctx = context.WithValue(ctx, contextKeyStaff, r.Header.Get("X-User-Role") == "staff")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) contextGetUserID(r *http.Request) int {
	userID, ok := r.Context().Value(contextKeyUserID).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userID
}

func (app *Application) contextIsStaff(r *http.Request) bool {
	staff, _ := r.Context().Value(contextKeyStaff).(bool)
	return staff
}

type limiterClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimit applies a per-client token bucket to the claim routes. The
// client map lives on the Application so every router built from it shares
// one limiter state, and the stale-entry sweeper starts exactly once.
func (app *Application) rateLimit(next http.Handler) http.Handler {
	app.limiterSweep.Do(func() {
		go app.sweepLimiterClients()
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.RateLimit.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		app.limiterMu.Lock()

		if app.limiterClients == nil {
			app.limiterClients = make(map[string]*limiterClient)
		}

		c, found := app.limiterClients[ip]
		if !found {
			c = &limiterClient{
				limiter: rate.NewLimiter(rate.Limit(app.config.RateLimit.RPS), app.config.RateLimit.Burst),
			}
			app.limiterClients[ip] = c
		}
		c.lastSeen = time.Now()

		allowed := c.limiter.Allow()

		app.limiterMu.Unlock()

		if !allowed {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stale client entries are swept every minute.
func (app *Application) sweepLimiterClients() {
	for {
		time.Sleep(time.Minute)

		app.limiterMu.Lock()
		for ip, c := range app.limiterClients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(app.limiterClients, ip)
			}
		}
		app.limiterMu.Unlock()
	}
}
