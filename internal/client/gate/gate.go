// Package gate decides where navigation may go given the session state.
package gate

import (
	"strings"

	"github.com/atinyakov/MailerAdmin/internal/client/session"
)

// Route paths.
const (
	LoginPath                = "/login"
	RegisterPath             = "/register"
	ForgotPasswordPath       = "/forgot-password"
	ResetPasswordPath        = "/reset-password"
	DashboardPath            = "/"
	CampaignsPath            = "/campaigns"
	CampaignPath             = "/campaign/:id"
	UsersPath                = "/users"
	UserPath                 = "/user/:id"
	PendingRegistrationsPath = "/pending-registrations"
	BillingPath              = "/billing"
	RestrictionsPath         = "/restrictions"
)

// Action is the outcome of a gate decision.
type Action int

const (
	Allow Action = iota
	Redirect
	Wait
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to do with a navigation. To is set for
// redirects only.
type Decision struct {
	Action Action
	To     string
}

// Route is one entry of the route table.
type Route struct {
	Pattern string
	Public  bool
}

// Routes is the console's route table.
var Routes = []Route{
	{Pattern: LoginPath, Public: true},
	{Pattern: RegisterPath, Public: true},
	{Pattern: ForgotPasswordPath, Public: true},
	{Pattern: ResetPasswordPath, Public: true},
	{Pattern: DashboardPath},
	{Pattern: CampaignsPath},
	{Pattern: CampaignPath},
	{Pattern: UsersPath},
	{Pattern: UserPath},
	{Pattern: PendingRegistrationsPath},
	{Pattern: BillingPath},
	{Pattern: RestrictionsPath},
}

// Decide evaluates a navigation to target. It is a pure function of st.
func Decide(st session.State, target string) Decision {
	if st.Loading {
		return Decision{Action: Wait}
	}
	path := clean(target)
	if st.Authenticated {
		if path == LoginPath {
			return Decision{Action: Redirect, To: DashboardPath}
		}
		return Decision{Action: Allow}
	}
	if !IsPublic(path) {
		return Decision{Action: Redirect, To: LoginPath}
	}
	return Decision{Action: Allow}
}

// IsPublic reports whether path can be visited without a session. Paths
// outside the route table require authentication.
func IsPublic(path string) bool {
	r, _, ok := Match(path)
	return ok && r.Public
}

// Match finds the route for path and extracts its ":name" parameters.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(clean(path))
	for _, r := range Routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, false
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// clean drops the query string and a trailing slash.
func clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func split(path string) []string {
	if path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
