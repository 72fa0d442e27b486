package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"codeberg.org/kvo/std/errors"
	"github.com/redis/go-redis/v9"

	"mojejecna/logger"
	"mojejecna/site"
)

// How long an app token lives before the user must log in again.
const tokenLifetime = 3 * 24 * time.Hour

type authDB struct {
	client *redis.Client
}

// initDB connects to Redis and verifies the connection. A Redis that
// cannot be reached at startup is fatal; without it no user can log in.
func initDB(addr, pwd string, idx int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pwd,
		DB:       idx,
	})
	res := client.Ping(context.Background())
	if res.Err() != nil {
		logger.Fatal("redis: cannot connect: %v", res.Err())
	}
	return client
}

// cookieToken extracts the app token from a Cookie header. Parsing goes
// through the stdlib cookie reader so that a cookie merely ending in
// "token" (apptoken=...) never matches.
func cookieToken(cookies string) (string, bool) {
	header := http.Header{}
	header.Add("Cookie", cookies)
	cookie, err := (&http.Request{Header: header}).Cookie("token")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// getCreds resolves the request's token cookie into stored user
// credentials and the persisted portal cookie headers.
func (db *authDB) getCreds(cookies string) (site.User, error) {
	token, ok := cookieToken(cookies)
	if !ok {
		return site.User{}, site.ErrInvalidAuth
	}

	ctx := context.Background()
	tokenKey := "token:" + token
	username, err := db.client.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return site.User{}, site.ErrInvalidAuth
	}
	if err != nil {
		return site.User{}, errors.New("failed to resolve token: "+err.Error(), nil)
	}

	record, err := db.client.HGetAll(ctx, "user:"+username).Result()
	if err != nil {
		return site.User{}, errors.New("failed to get user record: "+err.Error(), nil)
	}
	if len(record) == 0 {
		return site.User{}, site.ErrInvalidAuth
	}

	user := site.User{
		Token:           token,
		Username:        record["username"],
		Password:        record["password"],
		CanteenUsername: record["canteenUsername"],
		CanteenPassword: record["canteenPassword"],
		SiteTokens: map[string]string{
			site.PortalSchool:  record[site.PortalSchool],
			site.PortalCanteen: record[site.PortalCanteen],
		},
	}
	return user, nil
}

// writeCreds stores the user record and registers the app token.
func (db *authDB) writeCreds(user site.User) error {
	ctx := context.Background()
	record := map[string]string{
		"username":        user.Username,
		"password":        user.Password,
		"canteenUsername": user.CanteenUsername,
		"canteenPassword": user.CanteenPassword,
	}
	for portal, header := range user.SiteTokens {
		record[portal] = header
	}
	err := db.client.HSet(ctx, "user:"+user.Username, record).Err()
	if err != nil {
		return errors.New("failed to write user record: "+err.Error(), nil)
	}
	if user.Token != "" {
		err = db.client.Set(ctx, "token:"+user.Token, user.Username, tokenLifetime).Err()
		if err != nil {
			return errors.New("failed to write token: "+err.Error(), nil)
		}
	}
	return nil
}

// saveTokens persists rotated portal cookie headers after a request, so
// the next request resumes the same portal sessions instead of forcing a
// fresh portal login.
func (db *authDB) saveTokens(user site.User, sessions site.Sessions) {
	ctx := context.Background()
	fields := make(map[string]string, len(sessions))
	for portal, session := range sessions {
		fields[portal] = session.Header()
	}
	err := db.client.HSet(ctx, "user:"+user.Username, fields).Err()
	if err != nil {
		logger.Warn("failed to persist portal sessions for %s: %v", user.Username, err)
	}
}

// auth logs a user in to both portals and mints an app token. Bad portal
// credentials surface as ErrAuthFailed, not as a structural error. When
// no separate canteen credentials are supplied, the school credentials
// are reused; the school issues one account for both systems.
func (db *authDB) auth(form url.Values) (string, error) {
	username := form.Get("username")
	password := form.Get("password")
	if username == "" || password == "" {
		return "", site.ErrAuthFailed
	}
	user := site.User{
		Username:        username,
		Password:        password,
		CanteenUsername: form.Get("canteenUsername"),
		CanteenPassword: form.Get("canteenPassword"),
		SiteTokens:      make(map[string]string),
	}
	if user.CanteenUsername == "" {
		user.CanteenUsername = username
		user.CanteenPassword = password
	}

	sessions := site.NewSessions(user)
	ok, err := mux.Auth(&user, sessions, site.PortalSchool, site.PortalCanteen)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", site.ErrAuthFailed
	}

	b := make([]byte, 32)
	_, err = rand.Read(b)
	if err != nil {
		return "", errors.New("failed to generate token: "+err.Error(), nil)
	}
	user.Token = base64.URLEncoding.EncodeToString(b)

	err = db.writeCreds(user)
	if err != nil {
		return "", err
	}

	cookie := "token=" + user.Token + "; Expires="
	cookie += time.Now().UTC().Add(tokenLifetime).Format(time.RFC1123)
	return cookie, nil
}

// logout ends both portal sessions, blanks the persisted portal cookie
// headers and revokes the app token.
func (db *authDB) logout(user site.User, sessions site.Sessions) error {
	err := mux.Logout(&user, sessions)
	token := user.Token
	user.Token = ""
	user.SiteTokens = map[string]string{
		site.PortalSchool:  "",
		site.PortalCanteen: "",
	}
	writeErr := db.writeCreds(user)
	if writeErr != nil && err == nil {
		err = writeErr
	}
	db.client.Del(context.Background(), "token:"+token)
	return err
}
