package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData подписывает набор полей так, как это делает Telegram.
func signInitData(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secret := sha256.Sum256([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hash)
	return q.Encode()
}

func TestVerifyInitDataValid(t *testing.T) {
	initData := signInitData(map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAF3",
		"user":      `{"id":42,"username":"ivan","first_name":"Иван"}`,
	})

	values, err := VerifyInitData(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", values.Get("auth_date"))
	assert.Contains(t, values.Get("user"), `"id":42`)
}

func TestVerifyInitDataTamperedField(t *testing.T) {
	initData := signInitData(map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42}`,
	})
	tampered := strings.Replace(initData, "1700000000", "1700000001", 1)

	_, err := VerifyInitData(tampered, testBotToken)
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid initData hash", authErr.Reason)
}

func TestVerifyInitDataWrongToken(t *testing.T) {
	initData := signInitData(map[string]string{"auth_date": "1"})

	_, err := VerifyInitData(initData, "999:OTHER-TOKEN")
	assert.Error(t, err)
}

func TestVerifyInitDataNoHash(t *testing.T) {
	_, err := VerifyInitData("auth_date=1&user=%7B%22id%22%3A1%7D", testBotToken)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "No hash in initData", authErr.Reason)
}

func TestVerifyInitDataBadFormat(t *testing.T) {
	_, err := VerifyInitData("a=%zz;b", testBotToken)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Bad initData format", authErr.Reason)
}

func TestUserFromInitData(t *testing.T) {
	initData := signInitData(map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"username":"ivan","first_name":"Иван","last_name":"Петров"}`,
	})

	u, err := UserFromInitData(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "ivan", u.Username)
	assert.Equal(t, "Иван", u.FirstName)
	assert.Equal(t, "Петров", u.LastName)
}

func TestUserFromInitDataMissingUser(t *testing.T) {
	cases := map[string]map[string]string{
		"без поля user": {"auth_date": "1"},
		"битый JSON":    {"auth_date": "1", "user": "{нет"},
		"нулевой id":    {"auth_date": "1", "user": `{"id":0,"username":"x"}`},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UserFromInitData(signInitData(fields), testBotToken)
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, "No user in initData", authErr.Reason)
		})
	}
}
