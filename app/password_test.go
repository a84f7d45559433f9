package app

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/service"
	"bitwise74/roleplay-api/pkg/apierr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resetURL = "https://roleplay.example.com/reset"

func (e *env) forgot(username string) string {
	e.t.Helper()

	w := e.do(http.MethodPost, "/forgot-password", gin.H{
		"email":            username + "@example.com",
		"resetPasswordUrl": resetURL,
	}, "")
	require.Equal(e.t, http.StatusNoContent, w.Code, w.Body.String())

	var token model.PasswordResetToken
	require.NoError(e.t, e.deps.DB.Order("id DESC").First(&token).Error)
	return token.Token
}

func TestForgotPasswordSendsMail(t *testing.T) {
	e := newEnv(t)
	userID := e.register("alice")

	token := e.forgot("alice")

	sent := e.mailer.Messages()
	require.Len(t, sent, 1)

	m := sent[0]
	assert.Equal(t, service.PasswordResetSubject, m.Subject)
	assert.Equal(t, "Roleplay: Recuperação de Senha", m.Subject)
	assert.Equal(t, "alice@example.com", m.To)
	assert.Equal(t, "no-reply@roleplay.com", m.From)
	assert.Contains(t, m.HTML, "alice")
	assert.Contains(t, m.HTML, resetURL+"?token="+url.QueryEscape(token))

	var tokens []model.PasswordResetToken
	require.NoError(t, e.deps.DB.Where("user_id = ?", userID).Find(&tokens).Error)
	assert.Len(t, tokens, 1)
}

func TestForgotPasswordAcceptsRelativeAndAppLinks(t *testing.T) {
	for _, link := range []string{"url", "/reset-password", "roleplay://reset"} {
		t.Run(link, func(t *testing.T) {
			e := newEnv(t)
			userID := e.register("alice")

			w := e.do(http.MethodPost, "/forgot-password", gin.H{
				"email":            "alice@example.com",
				"resetPasswordUrl": link,
			}, "")
			require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

			var token model.PasswordResetToken
			require.NoError(t, e.deps.DB.Where("user_id = ?", userID).First(&token).Error)

			sent := e.mailer.Messages()
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0].HTML, link+"?token="+url.QueryEscape(token.Token))
		})
	}
}

func TestForgotPasswordReplacesOldTokens(t *testing.T) {
	e := newEnv(t)
	e.register("alice")

	first := e.forgot("alice")
	second := e.forgot("alice")
	assert.NotEqual(t, first, second)

	var count int64
	require.NoError(t, e.deps.DB.Model(&model.PasswordResetToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w := e.do(http.MethodPost, "/reset-password", gin.H{"token": first, "password": "newpass"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/forgot-password", gin.H{
		"email":            "ghost@example.com",
		"resetPasswordUrl": resetURL,
	}, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, e.mailer.Messages())
}

func TestForgotPasswordValidation(t *testing.T) {
	e := newEnv(t)

	for _, body := range []gin.H{
		{},
		{"email": "alice@example.com"},
		{"email": "alice@example.com", "resetPasswordUrl": "%zz"},
		{"email": "alice@example.com", "resetPasswordUrl": "javascript:alert(1)"},
		{"email": "nope", "resetPasswordUrl": resetURL},
	} {
		w := e.do(http.MethodPost, "/forgot-password", body, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestForgotPasswordMailFailure(t *testing.T) {
	e := newEnv(t)
	e.register("alice")
	e.mailer.Err = errors.New("smtp down")

	w := e.do(http.MethodPost, "/forgot-password", gin.H{
		"email":            "alice@example.com",
		"resetPasswordUrl": resetURL,
	}, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, apierr.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "smtp down")

	var count int64
	require.NoError(t, e.deps.DB.Model(&model.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t)
	e.register("alice")
	token := e.forgot("alice")

	w := e.do(http.MethodPost, "/reset-password", gin.H{"token": token, "password": "newpass"}, "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	e.login("alice", "newpass")

	w = e.do(http.MethodPost, "/sessions", gin.H{"email": "alice@example.com", "password": "secret"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a consumed token can't be used again
	w = e.do(http.MethodPost, "/reset-password", gin.H{"token": token, "password": "another"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierr.CodeBadRequest, decode(t, w)["code"])
}

func TestResetPasswordUnknownToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/reset-password", gin.H{"token": "nope", "password": "newpass"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	e := newEnv(t)
	e.register("alice")
	token := e.forgot("alice")

	require.NoError(t, e.deps.DB.Model(&model.PasswordResetToken{}).
		Where("token = ?", token).
		Update("created_at", time.Now().Add(-2*time.Hour-time.Minute)).
		Error)

	w := e.do(http.MethodPost, "/reset-password", gin.H{"token": token, "password": "newpass"}, "")
	require.Equal(t, http.StatusGone, w.Code)

	body := decode(t, w)
	assert.Equal(t, apierr.CodeTokenExpired, body["code"])
	assert.True(t, strings.Contains(body["message"].(string), "token has expired"))

	// the expired token is gone and the password is unchanged
	w = e.do(http.MethodPost, "/reset-password", gin.H{"token": token, "password": "newpass"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	e.login("alice", "secret")
}

func TestResetPasswordValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/reset-password", gin.H{"password": "newpass"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(http.MethodPost, "/reset-password", gin.H{"token": "abc", "password": "no"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
