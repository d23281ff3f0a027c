package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/MailerAdmin/internal/models"
	"github.com/atinyakov/MailerAdmin/internal/repository"
	handler "github.com/atinyakov/MailerAdmin/internal/server/handler/http"
	"github.com/atinyakov/MailerAdmin/internal/service"
)

type testEnv struct {
	url     string
	dataDir string
}

type result struct {
	out    string
	errOut string
	err    error
}

func cheapHash(p string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(p), bcrypt.MinCost)
}

// newTestEnv starts the stub API over seeded data and gives the console a
// private data directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := repository.NewMemoryRepository()
	require.NoError(t, repository.Seed(context.Background(), repo, cheapHash, time.Now()))

	tokens, err := service.NewTokenMaker("cli-test-secret", time.Hour)
	require.NoError(t, err)
	authSvc := service.NewAuthService(repo, tokens, nil)
	adminSvc := service.NewAdminService(repo, nil)
	log := zap.NewNop()
	router := handler.NewRouter(handler.Handlers{
		Auth:      &handler.AuthHandler{AuthService: authSvc, Log: log},
		Users:     &handler.UserHandler{Users: adminSvc, Log: log},
		Billing:   &handler.BillingHandler{Billing: adminSvc, Log: log},
		Campaigns: &handler.CampaignHandler{Campaigns: adminSvc, Log: log},
		Stats:     &handler.StatsHandler{Stats: adminSvc, Log: log},
	}, authSvc, log, 0)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{url: srv.URL + "/api", dataDir: t.TempDir()}
}

// run executes one console invocation, as a separate process would.
func (e *testEnv) run(input string, args ...string) result {
	var out, errOut bytes.Buffer
	st := &state{
		v:         viper.New(),
		version:   "1.2.3",
		buildDate: "2025-06-01",
		in:        strings.NewReader(input),
		out:       &out,
		errOut:    &errOut,
	}
	defer st.close()
	full := append([]string{"--api-url", e.url, "--data-dir", e.dataDir}, args...)
	err := st.run(context.Background(), full)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	r := e.run("", "login", "--email", repository.SeedAdminEmail, "--password", repository.SeedAdminPassword)
	require.NoError(t, r.err, r.errOut)
}

func (e *testEnv) userID(t *testing.T, username string) string {
	t.Helper()
	r := e.run("", "users", "list", "--json", "--search", username)
	require.NoError(t, r.err, r.errOut)
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(r.out), &users))
	require.Len(t, users, 1)
	return users[0].ID
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "redirecting to /login")
	assert.Empty(t, r.out)

	r = env.run(repository.SeedAdminEmail+"\n"+repository.SeedAdminPassword+"\n", "login")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Signed in as admin")
	assert.Contains(t, r.errOut, "Login successful!")

	r = env.run("", "whoami", "--json")
	require.NoError(t, r.err, r.errOut)
	var me models.User
	require.NoError(t, json.Unmarshal([]byte(r.out), &me))
	assert.Equal(t, models.RoleAdmin, me.Role)
	assert.Equal(t, repository.SeedAdminEmail, me.Email)

	r = env.run("", "login", "--email", repository.SeedAdminEmail, "--password", "x")
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "redirecting to /")

	r = env.run("", "logout")
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "Logged out successfully")

	r = env.run("", "dashboard")
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "redirecting to /login")
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		email   string
		pass    string
		wantMsg string
	}{
		{name: "bad email", email: "nope", pass: "secret", wantMsg: "Email is invalid"},
		{name: "wrong password", email: repository.SeedAdminEmail, pass: "wrong-password", wantMsg: "Invalid email or password"},
		{name: "not an admin", email: "alice@example.com", pass: repository.SeedPassword, wantMsg: "Admin privileges required"},
		{name: "suspended", email: "carol@example.com", pass: repository.SeedPassword, wantMsg: "suspended"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run("", "login", "--email", tt.email, "--password", tt.pass)
			require.Error(t, r.err)
			assert.Contains(t, r.errOut, tt.wantMsg)
			assert.NotContains(t, r.errOut, "Error:", "reported failures are not printed twice")
		})
	}

	_, err := os.Stat(filepath.Join(env.dataDir, "admin_token.json"))
	assert.True(t, os.IsNotExist(err), "no token is stored after failed logins")
}

func TestDashboardAndBilling(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "dashboard")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Emails sent:       9000")
	assert.Contains(t, r.out, "Healthy")
	assert.Contains(t, r.out, "Spring Launch")

	r = env.run("", "billing", "--json")
	require.NoError(t, r.err, r.errOut)
	var rows []models.BillingRow
	require.NoError(t, json.Unmarshal([]byte(r.out), &rows))
	assert.Len(t, rows, 4)

	r = env.run("", "billing")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "alice")
	assert.Contains(t, r.out, "$29.00")
}

func TestUsersCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "users", "list", "--status", "restricted")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "bob")
	assert.NotContains(t, r.out, "alice")

	r = env.run("", "users", "list", "--status", "frozen")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, `Error: unknown status "frozen"`)

	alice := env.userID(t, "alice")

	r = env.run("", "users", "restrict", alice)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "User restricted successfully")

	r = env.run("", "users", "show", alice, "--json")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, `"role": "restricted"`)

	r = env.run("", "users", "activate", alice)
	require.NoError(t, r.err, r.errOut)

	r = env.run("", "users", "role", alice, "admin")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "User role updated successfully")

	r = env.run("", "users", "show", alice, "--period", "day")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "role: admin")
	assert.Contains(t, r.out, "Last day: 5700 sent, 385 replies across 2 campaigns")

	r = env.run("", "users", "show", alice, "--period", "year")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, `Unknown period "year"`)

	r = env.run("", "users", "reset-password", alice, "--password", "123")
	require.Error(t, r.err)
	assert.NotContains(t, r.errOut, "Password reset successfully")

	r = env.run("", "users", "reset-password", alice, "--password", "brand-new-pass")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "Password reset successfully for alice!")

	r = env.run("", "users", "delete", "no-such-user")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, "User not found")
	assert.NotContains(t, r.errOut, "Error:")

	r = env.run("", "users", "delete", alice)
	require.NoError(t, r.err, r.errOut)
	r = env.run("", "users", "list")
	require.NoError(t, r.err)
	assert.NotContains(t, r.out, "alice")
}

func TestPlansCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "plans", "add", "--name", "star-ter", "--limit", "500")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, "Plan name must be lowercase")

	r = env.run("", "plans", "add", "--name", "starter", "--limit", "500", "--price", "499", "--stripe-price", "price_starter")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, `Plan "starter" created successfully!`)

	r = env.run("", "plans", "set-limit", "basic", "abc")
	require.Error(t, r.err)

	r = env.run("", "plans", "set-limit", "basic", "1500")
	require.NoError(t, r.err, r.errOut)

	r = env.run("", "plans", "list", "--json")
	require.NoError(t, r.err)
	var plans []models.Plan
	require.NoError(t, json.Unmarshal([]byte(r.out), &plans))
	limits := map[string]int{}
	for _, p := range plans {
		limits[p.Name] = p.EmailLimit
	}
	assert.Equal(t, 1500, limits["basic"])
	assert.Equal(t, 500, limits["starter"])

	r = env.run("", "plans", "remove", "ghost")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, `Plan "ghost" not found`)

	r = env.run("", "plans", "remove", "starter")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, `Plan "starter" removed successfully.`)
}

func TestShellKeepsStagedEdits(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	input := strings.Join([]string{
		"plans stage premium 12000",
		"plans list",
		"plans save premium",
		"",
		"bogus",
		"plans list",
		"exit",
		"plans list",
	}, "\n") + "\n"

	r := env.run(input, "shell")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Limit 12000 staged for premium")
	assert.Contains(t, r.out, "12000 (unsaved)")
	assert.Contains(t, r.errOut, `Plan "premium" updated successfully!`)
	assert.Contains(t, r.errOut, `unknown command "bogus"`)
	assert.Equal(t, 1, strings.Count(r.out, "12000 (unsaved)"))
	assert.Equal(t, 2, strings.Count(r.out, "For high volume senders"), "commands after exit are not run")
}

func TestShellEndsOnEOF(t *testing.T) {
	env := newTestEnv(t)
	r := env.run("version", "shell")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Build version: 1.2.3")
}

func TestRegistrationsCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "registrations", "list")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "grace")
	assert.Contains(t, r.out, "1 expired")

	r = env.run("", "registrations", "list", "--hide-expired", "--json")
	require.NoError(t, r.err, r.errOut)
	var pending []models.PendingRegistration
	require.NoError(t, json.Unmarshal([]byte(r.out), &pending))
	assert.Len(t, pending, 2)

	out := filepath.Join(t.TempDir(), "pending.csv")
	r = env.run("", "registrations", "export", "--output", out)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "Exported to CSV")
	f, err := os.Open(out)
	require.NoError(t, err)
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, f.Close())
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Username", records[0][0])

	r = env.run("", "registrations", "export", "--search", "nobody", "--output", filepath.Join(t.TempDir(), "empty.csv"))
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, "No data to export")

	r = env.run("", "registrations", "approve", "erin@example.com")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "erin approved successfully!")

	r = env.run("", "registrations", "approve", "grace@example.com")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, "Verification code expired")

	r = env.run("", "registrations", "approve", "erin@example.com")
	require.Error(t, r.err)
	assert.Contains(t, r.errOut, "Registration not found")

	r = env.run("", "users", "list", "--search", "erin")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "erin@example.com")
}

func TestRegistrationsWatch(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "registrations", "watch", "--interval", "1h", "--for", "300ms")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "frank")
}

func TestCampaignCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	r := env.run("", "campaigns", "list", "--json")
	require.NoError(t, r.err, r.errOut)
	var campaigns []models.Campaign
	require.NoError(t, json.Unmarshal([]byte(r.out), &campaigns))
	ids := map[string]string{}
	for _, c := range campaigns {
		ids[c.Name] = c.ID
	}
	require.Len(t, ids, 5)

	r = env.run("", "campaigns", "show", ids["Spring Launch"])
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "sent: 4200")
	assert.Contains(t, r.out, "engagement: 7%")

	r = env.run("", "campaigns", "pause", ids["Spring Launch"])
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "Campaign paused")

	r = env.run("", "campaigns", "resume", ids["Newsletter #1"])
	require.Error(t, r.err)

	r = env.run("", "campaigns", "overview")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "paused: 2")
	assert.Contains(t, r.out, "total: 5")
}

func TestVersionNeedsNoConfig(t *testing.T) {
	env := newTestEnv(t)
	r := env.run("", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.NoError(t, r.err)
	assert.Equal(t, "Build version: 1.2.3\nBuild date: 2025-06-01\n", r.out)
}
