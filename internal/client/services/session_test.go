package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func signedIn(t *testing.T, store SessionStore, fc *fakeClient, user models.User, token string) {
	t.Helper()
	fc.LoginRet = &client.AuthResponse{Token: token, User: user}
	res := store.SignIn(context.Background(), user.Email, "secret")
	require.True(t, res.Success, res.Message)
}

var paul = models.User{ID: "42", Name: "Chez Paul", Email: "paul@resto.fr"}

func TestSignIn_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	token := makeJWT(t, time.Now().Add(time.Hour))

	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, token)

	s := store.Session()
	assert.Equal(t, models.StateAuthenticatedNoRole, s.State())
	assert.Equal(t, token, fc.Token())

	// restart
	fc2 := &fakeClient{ProfileRet: paul}
	restored := NewSessionStore(fc2, db, nil, nil)
	require.NoError(t, restored.Init(ctx))

	got := restored.Session()
	require.NotNil(t, got.User)
	assert.Equal(t, paul.ID, got.User.ID)
	assert.Equal(t, token, got.Token)
	assert.True(t, got.Initialized)
	assert.False(t, got.Loading)
	assert.Equal(t, token, fc2.Token())
	assert.True(t, fc2.Called("GetProfile"))
}

func TestSignIn_Validation(t *testing.T) {
	fc := &fakeClient{}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	res := store.SignIn(context.Background(), " ", "pw")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrValidation)
	assert.NotEmpty(t, res.Message)

	res = store.SignIn(context.Background(), "a@b.fr", "")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrValidation)

	assert.Empty(t, fc.Calls())
}

func TestSignIn_FailureCarriesMessage(t *testing.T) {
	fc := &fakeClient{LoginErr: apiErr(http.StatusUnauthorized, "Identifiants invalides")}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	res := store.SignIn(context.Background(), "a@b.fr", "bad")
	assert.False(t, res.Success)
	assert.Equal(t, "Identifiants invalides", res.Message)
	assert.Equal(t, models.StateAnonymous, store.Session().State())
	assert.False(t, store.Session().Loading)

	fc.LoginErr = networkErr("POST", "/login")
	res = store.SignIn(context.Background(), "a@b.fr", "bad")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, client.ErrUnavailable)
	assert.NotContains(t, res.Message, "connection refused")
}

func TestSignOut_ClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)

	signedIn(t, store, fc, paul, "tok")
	_, err := store.SetRole(ctx, models.RoleRestaurant)
	require.NoError(t, err)

	fc.LogoutErr = networkErr("POST", "/logout")
	require.NoError(t, store.SignOut(ctx))

	s := store.Session()
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
	assert.Equal(t, models.RoleNone, s.Role)
	assert.True(t, s.Initialized)
	assert.Empty(t, fc.Token())
	assert.Zero(t, countMeta(t, db))
	assert.True(t, fc.Called("Logout"))
}

func TestSignOut_Idempotent(t *testing.T) {
	fc := &fakeClient{}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	require.NoError(t, store.SignOut(context.Background()))
	require.NoError(t, store.SignOut(context.Background()))
	assert.False(t, fc.Called("Logout"))
	assert.Equal(t, models.StateAnonymous, store.Session().State())
}

func TestInit_NoPersistedToken(t *testing.T) {
	fc := &fakeClient{}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	require.NoError(t, store.Init(context.Background()))
	s := store.Session()
	assert.Equal(t, models.StateAnonymous, s.State())
	assert.True(t, s.Initialized)
	assert.Empty(t, fc.Calls())
}

func TestInit_ExpiredTokenSignsOutWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, makeJWT(t, time.Now().Add(-time.Minute)))

	fc2 := &fakeClient{}
	restored := NewSessionStore(fc2, db, nil, nil)
	require.NoError(t, restored.Init(ctx))

	assert.Equal(t, models.StateAnonymous, restored.Session().State())
	assert.Empty(t, fc2.Calls())
	assert.Zero(t, countMeta(t, db))
}

func TestInit_RejectedTokenSignsOut(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "opaque-token")

	fc2 := &fakeClient{ProfileErr: apiErr(http.StatusUnauthorized, "Token invalide")}
	restored := NewSessionStore(fc2, db, nil, nil)
	require.NoError(t, restored.Init(ctx))

	assert.Equal(t, models.StateAnonymous, restored.Session().State())
	assert.Empty(t, fc2.Token())
	assert.Zero(t, countMeta(t, db))
}

func TestInit_OfflineKeepsPersistedSession(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "opaque-token")
	_, err := store.SetRole(ctx, models.RoleRestaurant)
	require.NoError(t, err)

	fc2 := &fakeClient{ProfileErr: networkErr("GET", "/profile")}
	restored := NewSessionStore(fc2, db, nil, nil)
	require.NoError(t, restored.Init(ctx))

	s := restored.Session()
	assert.Equal(t, models.StateAuthenticatedWithRole, s.State())
	assert.Equal(t, "opaque-token", s.Token)
	assert.Equal(t, models.RoleRestaurant, s.Role)
}

func TestSetRole_TwoPhase(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "tok")

	status, err := store.SetRole(ctx, models.RoleAssociation)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, status)
	assert.Equal(t, models.RoleAssociation, fc.LastProfileUpdate.Role)
	assert.Equal(t, models.StateAuthenticatedWithRole, store.Session().State())

	fc.UpdateProfileErr = networkErr("PUT", "/profile")
	status, err = store.SetRole(ctx, models.RoleRestaurant)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, status)

	s := store.Session()
	assert.Equal(t, models.RoleRestaurant, s.Role)
	assert.Equal(t, models.SyncFailed, s.ProfileSync)
	assert.Equal(t, []byte("restaurant"), getMeta(t, db, common.MetadataKeyRole))
}

func TestSetRole_Rejections(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	_, err := store.SetRole(ctx, models.RoleAssociation)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	signedIn(t, store, fc, paul, "tok")
	_, err = store.SetRole(ctx, models.Role("admin"))
	require.ErrorIs(t, err, common.ErrValidation)
	assert.False(t, fc.Called("UpdateProfile"))
}

func TestRoleOnlyChangesThroughSetRole(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "tok")

	_, err := store.SetRole(ctx, models.RoleAssociation)
	require.NoError(t, err)

	name := "Les Restos"
	echo := paul
	echo.Name = name
	echo.Role = models.RoleRestaurant
	fc.UpdateProfileRet = echo
	status, err := store.UpdateProfile(ctx, models.ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, status)
	assert.Equal(t, models.RoleAssociation, store.Session().Role)
	assert.Equal(t, name, store.Session().User.Name)

	fc2 := &fakeClient{ProfileRet: echo}
	restored := NewSessionStore(fc2, db, nil, nil)
	require.NoError(t, restored.Init(ctx))
	assert.Equal(t, models.RoleAssociation, restored.Session().Role)
	assert.Equal(t, models.RoleAssociation, restored.Session().User.Role)
}

func TestUpdateProfile_RemoteFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{UpdateProfileErr: apiErr(500, "boom")}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "tok")

	phone := "0102030405"
	status, err := store.UpdateProfile(ctx, models.ProfilePatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, status)
	assert.Equal(t, phone, store.Session().User.Phone)
	assert.Contains(t, string(getMeta(t, db, common.MetadataKeyUser)), phone)

	_, err = store.UpdateProfile(ctx, models.ProfilePatch{})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("auto authenticated", func(t *testing.T) {
		u := models.User{ID: "1", Name: "Resto A", Email: "a@a.com"}
		fc := &fakeClient{RegisterRet: &client.AuthResponse{Token: "tok", User: u}}
		store := NewSessionStore(fc, setupDB(t), nil, nil)

		res := store.SignUp(ctx, models.SignUpDraft{Name: "Resto A", Email: "a@a.com", Password: "x", Role: models.RoleRestaurant})
		require.True(t, res.Success)
		s := store.Session()
		assert.Equal(t, "tok", s.Token)
		assert.Equal(t, models.RoleRestaurant, s.Role)
	})

	t.Run("account created without token", func(t *testing.T) {
		u := models.User{ID: "1", Name: "Resto A", Email: "a@a.com"}
		fc := &fakeClient{RegisterRet: &client.AuthResponse{User: u}}
		store := NewSessionStore(fc, setupDB(t), nil, nil)

		res := store.SignUp(ctx, models.SignUpDraft{Name: "Resto A", Email: "a@a.com", Password: "x"})
		require.True(t, res.Success)
		assert.NotEmpty(t, res.Message)
		assert.Equal(t, models.StateAnonymous, store.Session().State())
	})

	t.Run("validation", func(t *testing.T) {
		fc := &fakeClient{}
		store := NewSessionStore(fc, setupDB(t), nil, nil)

		res := store.SignUp(ctx, models.SignUpDraft{Email: "a@a.com", Password: "x"})
		assert.False(t, res.Success)
		var vErr *ValidationError
		require.True(t, errors.As(res.Err, &vErr))
		assert.Equal(t, "name", vErr.Field)
		assert.Equal(t, "Invalid name: must not be empty.", res.Message)
		assert.Empty(t, fc.Calls())
	})
}

func TestTokenSealedAtRest(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	secret := []byte("correct horse")
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, secret, nil)
	signedIn(t, store, fc, paul, "plain-token")

	raw := getMeta(t, db, common.MetadataKeyToken)
	assert.NotEmpty(t, raw)
	assert.NotContains(t, string(raw), "plain-token")
	assert.Len(t, getMeta(t, db, common.MetadataKeyTokenSalt), 16)

	fc2 := &fakeClient{ProfileRet: paul}
	restored := NewSessionStore(fc2, db, secret, nil)
	require.NoError(t, restored.Init(ctx))
	assert.Equal(t, "plain-token", restored.Session().Token)

	// wrong secret: the token is unreadable and the session stays anonymous
	fc3 := &fakeClient{ProfileRet: paul}
	wrong := NewSessionStore(fc3, db, []byte("other"), nil)
	require.NoError(t, wrong.Init(ctx))
	assert.Equal(t, models.StateAnonymous, wrong.Session().State())
	assert.False(t, fc3.Called("GetProfile"))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	store := NewSessionStore(fc, setupDB(t), nil, nil)

	var states []models.SessionState
	store.Subscribe(func(ctx context.Context, s models.Session) {
		states = append(states, s.State())
	})

	signedIn(t, store, fc, paul, "tok")
	require.NoError(t, store.SignOut(ctx))

	require.NotEmpty(t, states)
	assert.Contains(t, states, models.StateAuthenticatedNoRole)
	assert.Equal(t, models.StateAnonymous, states[len(states)-1])
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(makeJWT(t, now.Add(-time.Second)), now))
	assert.False(t, tokenExpired(makeJWT(t, now.Add(time.Hour)), now))
	assert.False(t, tokenExpired("opaque", now))
}

func TestSignIn_OtherUserDoesNotInheritRole(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	fc := &fakeClient{}
	store := NewSessionStore(fc, db, nil, nil)
	signedIn(t, store, fc, paul, "tok-paul")

	_, err := store.SetRole(ctx, models.RoleRestaurant)
	require.NoError(t, err)

	// same user again keeps the local role
	signedIn(t, store, fc, paul, "tok-paul-2")
	assert.Equal(t, models.RoleRestaurant, store.Session().Role)

	marie := models.User{ID: "43", Name: "Les Restos", Email: "marie@assoc.fr", Role: models.RoleAssociation}
	signedIn(t, store, fc, marie, "tok-marie")

	s := store.Session()
	require.NotNil(t, s.User)
	assert.Equal(t, models.ID("43"), s.User.ID)
	assert.Equal(t, models.RoleAssociation, s.Role)
	assert.Equal(t, []byte("association"), getMeta(t, db, common.MetadataKeyRole))
}
