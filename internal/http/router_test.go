package httpapi

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	"bagofholding/internal/bag"
	invitationhandler "bagofholding/internal/invitation/handler"
	invitationservice "bagofholding/internal/invitation/service"
	invitationstore "bagofholding/internal/invitation/store"
	"bagofholding/internal/item"
	jwttoken "bagofholding/internal/jwt"
	"bagofholding/internal/notify"
	"bagofholding/internal/user"
	"bagofholding/pkg/testutil"
)

// newTestServer assembles the full router over in-memory stores, the same
// wiring main does without postgres, redis, or kafka.
func newTestServer(t *testing.T) (http.Handler, *jwttoken.Service) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	tokens := jwttoken.NewService("router-test-key", "bagofholding-test")

	accessSvc := access.NewService(access.NewInMemoryStore(), logger)
	auditor := audit.NewPublisher(audit.NewInMemoryStore())
	sink := notify.NoopSink{}

	userSvc := user.NewService(user.NewInMemoryStore(), tokens, time.Hour, nil, logger)
	bagSvc := bag.NewService(bag.NewInMemoryStore(), accessSvc, auditor, nil, logger)
	invitationSvc := invitationservice.New(invitationstore.NewInMemoryStore(), accessSvc, sink, auditor, nil, logger, 72*time.Hour)
	itemSvc := item.NewService(item.NewInMemoryStore(), accessSvc, sink, logger)

	router := NewRouter(Deps{
		Logger:       logger,
		JWTValidator: tokens,
		Users:        user.NewHandler(userSvc, logger),
		Bags:         bag.NewHandler(bagSvc, logger),
		Invitations:  invitationhandler.New(invitationSvc, bagSvc, logger),
		Items:        item.NewHandler(itemSvc, logger),
	})
	return router, tokens
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestServer(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRouter_MetricsExposed(t *testing.T) {
	router, _ := newTestServer(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRouter_ProtectedRoutesRejectMissingToken(t *testing.T) {
	router, _ := newTestServer(t)

	for _, path := range []string{"/me", "/bags"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}
}

func TestRouter_PreviewIsPublic(t *testing.T) {
	router, _ := newTestServer(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/invitations/some-token"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestRouter_EndToEndInvitationFlow(t *testing.T) {
	router, _ := newTestServer(t)

	register := func(email string) string {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
			"email":    email,
			"password": "correct-horse-battery",
		}))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    email,
			"password": "correct-horse-battery",
		}))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[struct {
			AccessToken string `json:"access_token"`
		}](t, rr)
		return resp.AccessToken
	}

	ownerToken := register("owner@example.com")
	inviteeToken := register("invitee@example.com")

	authed := func(req *http.Request, token string) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	// Owner creates a bag.
	rr := testutil.DoRequest(router, authed(
		testutil.NewJSONRequest(t, http.MethodPost, "/bags", map[string]string{"name": "Trip Kit"}), ownerToken))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[struct {
		ID string `json:"id"`
	}](t, rr)

	// Owner issues an invitation.
	rr = testutil.DoRequest(router, authed(
		testutil.NewJSONRequest(t, http.MethodPost, "/bags/"+created.ID+"/invitations", nil), ownerToken))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	invitation := testutil.UnmarshalResponse[struct {
		Token string `json:"token"`
	}](t, rr)
	require.NotEmpty(t, invitation.Token)

	// Anyone can preview without a session; the preview names the bag.
	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/invitations/"+invitation.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	preview := testutil.UnmarshalResponse[struct {
		BagName string `json:"bag_name"`
	}](t, rr)
	require.Equal(t, "Trip Kit", preview.BagName)

	// Invitee accepts and can now read the bag.
	rr = testutil.DoRequest(router, authed(
		testutil.NewRequest(t, http.MethodPost, "/invitations/"+invitation.Token+"/accept"), inviteeToken))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, authed(
		testutil.NewRequest(t, http.MethodGet, "/bags/"+created.ID), inviteeToken))
	testutil.AssertStatus(t, rr, http.StatusOK)

	// A second acceptance reports the token as consumed.
	rr = testutil.DoRequest(router, authed(
		testutil.NewRequest(t, http.MethodPost, "/invitations/"+invitation.Token+"/accept"), ownerToken))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_accepted")

	// Members may not issue invitations.
	rr = testutil.DoRequest(router, authed(
		testutil.NewJSONRequest(t, http.MethodPost, "/bags/"+created.ID+"/invitations", nil), inviteeToken))
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
}
