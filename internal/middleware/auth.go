package middleware

import (
	"context"
	"strings"

	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/router"
	"github.com/arisefit-lab/backend/pkg/xcontext"
)

const sessionUserIDKey = "user_id"

type AuthVerifier struct {
	useAccessToken bool
	useSession     bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

func (a *AuthVerifier) WithSession() *AuthVerifier {
	a.useSession = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if a.useSession {
			if userID := getSessionUserID(ctx); userID != "" {
				return xcontext.WithRequestUserID(ctx, userID), nil
			}
		}

		if a.useAccessToken {
			token := getAccessToken(ctx)
			if token != "" {
				info, err := xcontext.TokenEngine(ctx).Verify(token)
				if err != nil {
					xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
					return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
				}

				if a.useSession {
					saveSessionUserID(ctx, info.ID)
				}

				return xcontext.WithRequestUserID(ctx, info.ID), nil
			}
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func getAccessToken(ctx context.Context) string {
	r := xcontext.HTTPRequest(ctx)
	authorization := r.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := r.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func getSessionUserID(ctx context.Context) string {
	session, err := xcontext.SessionStore(ctx).
		Get(xcontext.HTTPRequest(ctx), xcontext.Configs(ctx).Session.Name)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get session: %v", err)
		return ""
	}

	userID, ok := session.Values[sessionUserIDKey].(string)
	if !ok {
		return ""
	}

	return userID
}

// saveSessionUserID refreshes the session after a token verification, so
// later requests authenticate without carrying the token.
func saveSessionUserID(ctx context.Context, userID string) {
	session, err := xcontext.SessionStore(ctx).
		Get(xcontext.HTTPRequest(ctx), xcontext.Configs(ctx).Session.Name)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get session: %v", err)
		return
	}

	session.Values[sessionUserIDKey] = userID
	if err := session.Save(xcontext.HTTPRequest(ctx), xcontext.HTTPWriter(ctx)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot save session: %v", err)
	}
}
