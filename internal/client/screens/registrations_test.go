package screens

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/MailerAdmin/internal/client/notify"
	"github.com/atinyakov/MailerAdmin/internal/models"
)

var (
	regNow     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pendingFix = []models.PendingRegistration{
		{ID: "r1", Username: "dave", Email: "dave@example.com", VerificationCode: "111111", CodeExpires: regNow.Add(time.Hour), CreatedAt: regNow.Add(-time.Hour)},
		{ID: "r2", Username: "erin", Email: "erin@other.org", VerificationCode: "222222", CodeExpires: regNow.Add(-time.Minute), CreatedAt: regNow.Add(-48 * time.Hour)},
	}
)

func registrationsFixture(t *testing.T) (*fixture, *Registrations) {
	t.Helper()
	f := newFixture(t)
	f.handle("GET /auth/pending-registrations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.PendingRegistrationsResponse{PendingUsers: pendingFix})
	})
	reg := NewRegistrations(f.env)
	require.NoError(t, reg.Load(context.Background()))
	return f, reg
}

func TestRegistrations_Approve(t *testing.T) {
	f, reg := registrationsFixture(t)
	f.handle("POST /auth/verify-registration", func(w http.ResponseWriter, r *http.Request) {
		var body models.VerifyRegistrationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.VerifyRegistrationRequest{Email: "dave@example.com", VerificationCode: "111111"}, body)
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "verified"})
	})

	require.NoError(t, reg.Approve(context.Background(), "r1"))
	require.NoError(t, reg.Approve(context.Background(), "r1"))

	require.Len(t, reg.Pending(), 1)
	assert.Equal(t, "r2", reg.Pending()[0].ID)
	assert.Equal(t, []string{"dave approved successfully!"}, f.rec.Messages(notify.LevelSuccess))
	assert.Equal(t, 1, f.calls.count("POST /auth/verify-registration"))
}

func TestRegistrations_ApproveFailureUsesServerText(t *testing.T) {
	f, reg := registrationsFixture(t)
	f.handle("POST /auth/verify-registration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Verification code expired"})
	})

	err := reg.Approve(context.Background(), "r2")
	assert.EqualError(t, err, "Verification code expired")
	assert.Len(t, reg.Pending(), 2)
}

func TestRegistrations_FilterAndExpired(t *testing.T) {
	_, reg := registrationsFixture(t)

	assert.Equal(t, 1, reg.ExpiredCount())
	assert.Len(t, reg.Filter("", false), 2)
	assert.Len(t, reg.Filter("", true), 1)
	assert.Equal(t, "r2", reg.Filter("OTHER", false)[0].ID)
	assert.Empty(t, reg.Filter("other", true))
}

func TestRegistrations_ExportCSV(t *testing.T) {
	f, reg := registrationsFixture(t)

	var buf bytes.Buffer
	err := reg.ExportCSV(&buf, nil)
	assert.EqualError(t, err, "No data to export")
	assert.Equal(t, []string{"No data to export"}, f.rec.Messages(notify.LevelError))
	assert.Zero(t, buf.Len())

	require.NoError(t, reg.ExportCSV(&buf, reg.Pending()))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"dave", "dave@example.com"}, records[1][:2])
	assert.Equal(t, "111111", records[1][3])
	assert.Equal(t, "Pending", records[1][5])
	assert.Equal(t, "Expired", records[2][5])
	assert.Contains(t, f.rec.Messages(notify.LevelSuccess), "Exported to CSV")

	assert.Equal(t, "pending-registrations-2025-06-01.csv", ExportFilename(regNow))
}

func TestRegistrations_UnauthorizedLoadIsQuiet(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /auth/pending-registrations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, models.MessageResponse{Message: "Token is not valid"})
	})
	reg := NewRegistrations(f.env)

	require.Error(t, reg.Load(context.Background()))
	assert.Empty(t, f.rec.All())
}

func TestRegistrations_LoadFailureToasts(t *testing.T) {
	f := newFixture(t)
	f.handle("GET /auth/pending-registrations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTeapot, map[string]string{})
	})
	reg := NewRegistrations(f.env)

	require.Error(t, reg.Load(context.Background()))
	assert.Equal(t, []string{"Failed to load pending registrations"}, f.rec.Messages(notify.LevelError))
}

func TestRegistrations_AutoRefresh(t *testing.T) {
	f, reg := registrationsFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg.StartAutoRefresh(ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return f.calls.count("GET /auth/pending-registrations") >= 3
	}, 2*time.Second, 2*time.Millisecond)
	assert.Contains(t, f.rec.Messages(notify.LevelSuccess), RefreshNotice)
}
