// File: service/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Application routes: greeting, user registration and login.

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/protocol"
	"github.com/momentics/hioload-httpd/router"
	"github.com/momentics/hioload-httpd/store"
)

// Response bodies.
const (
	BodyHello           = "Hello, World!"
	BodyRegisterSuccess = "Register Success"
	BodyRegisterFailed  = "Register Failed"
	BodyLoginSuccess    = "Login Success"
	BodyLoginFailed     = "Login Failed"
	BodyRegisterHint    = "Please use POST to register"
	BodyLoginHint       = "Please use POST to login"
)

// Context carries the collaborators handlers need.
type Context struct {
	Users store.UserStore
	Log   *zap.Logger

	// Metrics and Probes back GET /metrics; the route is only installed
	// when Metrics is set.
	Metrics *control.MetricsRegistry
	Probes  *control.DebugProbes
}

// Install registers every route on r.
func (c *Context) Install(r *router.Router) {
	if c.Log == nil {
		c.Log = zap.NewNop()
	}
	r.GET("/", c.hello)
	r.POST("/register", c.register)
	r.POST("/login", c.login)
	r.GET("/register", hint(BodyRegisterHint))
	r.GET("/login", hint(BodyLoginHint))
	if c.Metrics != nil {
		r.GET("/metrics", c.metrics)
	}
}

func (c *Context) hello(*protocol.Request) *protocol.Response {
	return protocol.OK(BodyHello)
}

func hint(body string) router.HandlerFunc {
	return func(*protocol.Request) *protocol.Response {
		return protocol.OK(body)
	}
}

func (c *Context) register(req *protocol.Request) *protocol.Response {
	return c.credentials(req, "register", c.Users.RegisterUser, BodyRegisterSuccess, BodyRegisterFailed)
}

func (c *Context) login(req *protocol.Request) *protocol.Response {
	return c.credentials(req, "login", c.Users.LoginUser, BodyLoginSuccess, BodyLoginFailed)
}

type credentialFunc func(ctx context.Context, username, password string) (bool, error)

func (c *Context) credentials(req *protocol.Request, op string, fn credentialFunc, success, failure string) *protocol.Response {
	form := req.Form()
	username, password := form["username"], form["password"]
	if username == "" || password == "" {
		return protocol.Error(protocol.StatusBadRequest, failure)
	}

	ok, err := fn(context.Background(), username, password)
	if err != nil {
		c.Log.Error("user store failure",
			zap.String("op", op),
			zap.String("username", username),
			zap.Error(err),
		)
	}
	if !ok {
		return protocol.Error(protocol.StatusBadRequest, failure)
	}
	c.Log.Info("user "+op, zap.String("username", username))
	return protocol.OK(success)
}

func (c *Context) metrics(*protocol.Request) *protocol.Response {
	snap := c.Metrics.GetSnapshot()
	if c.Probes != nil {
		snap = c.Probes.Merge(snap)
	}
	return protocol.OK(control.Render(snap))
}
