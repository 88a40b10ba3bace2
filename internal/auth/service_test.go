package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	testEmail        = "lifter@example.com"
	testPassword     = "testpass"
	testPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i" // testpass
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type usersTestRepo struct {
	users map[string]*User
}

func newUsersTestRepo(users ...*User) *usersTestRepo {
	r := &usersTestRepo{users: make(map[string]*User)}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *usersTestRepo) Add(_ context.Context, user User) (*User, error) {
	if _, ok := r.users[user.Email]; ok {
		return nil, ErrEmailTaken
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[user.Email] = &user
	return &user, nil
}

func (r *usersTestRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func TestAuthService_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	repo := newUsersTestRepo(&User{ID: "user-1", Email: testEmail, PasswordHash: testPasswordHash})
	authService := NewAuthService(repo, time.Hour, db)
	require.NotNil(t, authService)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	now := time.Now()
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectHSet(sessionKey, fieldUserID, "user-1", fieldCreatedAt, now.Unix()).SetVal(2)
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	ctx := context.Background()
	token, err := authService.Login(ctx, Credentials{Email: " Lifter@Example.com ", Password: testPassword}, now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	// failed logins never touch redis
	token, err = authService.Login(ctx, Credentials{Email: testEmail, Password: "invalid_pass"}, now)
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Empty(t, token)

	token, err = authService.Login(ctx, Credentials{Email: "nobody@example.com", Password: testPassword}, now)
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Empty(t, token)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Signup(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()

	repo := newUsersTestRepo()
	authService := NewAuthService(repo, time.Hour, db)
	authService.HashPasswordFunc = func(password string) (string, error) {
		return "hashed:" + password, nil
	}

	ctx := context.Background()
	now := time.Now()

	user, err := authService.Signup(ctx, Credentials{Email: "New@Example.com", Password: "long-enough"}, now)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "hashed:long-enough", user.PasswordHash)
	assert.NotEmpty(t, user.ID)

	_, err = authService.Signup(ctx, Credentials{Email: "new@example.com", Password: "long-enough"}, now)
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = authService.Signup(ctx, Credentials{Email: "not-an-email", Password: "long-enough"}, now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authService.Signup(ctx, Credentials{Email: "short@example.com", Password: "short"}, now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(newUsersTestRepo(), time.Hour, db)
	ctx := context.Background()

	token := "token-1"
	sessionKey := sessionKeyPrefix + token
	mock.ExpectHGet(sessionKey, fieldCreatedAt).SetVal("1715594400")
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, token).SetVal(1)

	loggedOut, err := authService.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	mock.ExpectHGet(sessionKeyPrefix+"unknown", fieldCreatedAt).RedisNil()
	loggedOut, err = authService.Logout(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, loggedOut)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	authService := NewAuthService(newUsersTestRepo(), ttl, rdb)
	require.NotNil(t, authService)

	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectHGet(sessionKeyPrefix+t1, fieldCreatedAt).SetVal(fmt.Sprintf("%d", then.Unix()))
	mock.ExpectHGet(sessionKeyPrefix+t2, fieldCreatedAt).SetVal(fmt.Sprintf("%d", now.Unix()))
	// only t1 is past its ttl
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)

	authService.ScanAndClean(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}
