package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// AuthError — ошибка проверки initData. На HTTP-границе всегда даёт 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// InitDataUser — личность пользователя из поля user в initData.
type InitDataUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// VerifyInitData проверяет подпись телеграмовского initData.
// Строка разбирается как querystring, поле hash изымается, остальные пары
// сортируются по ключу и склеиваются через \n; подпись — HMAC-SHA256 от этой
// строки на ключе SHA-256(токен бота). Возвращает разобранные поля только
// при совпадении подписи. Побочных эффектов нет.
func VerifyInitData(initData, botToken string) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, &AuthError{"Bad initData format"}
	}

	if !values.Has("hash") {
		return nil, &AuthError{"No hash in initData"}
	}
	receivedHash := values.Get("hash")
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString))
	calculated := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal — сравнение за постоянное время
	if !hmac.Equal([]byte(calculated), []byte(receivedHash)) {
		return nil, &AuthError{"Invalid initData hash"}
	}

	return values, nil
}

// UserFromInitData проверяет initData и достаёт из него пользователя.
// Битый или отсутствующий JSON в поле user — это не ошибка подписи,
// но без числового id авторизовать запрос нечем.
func UserFromInitData(initData, botToken string) (*InitDataUser, error) {
	values, err := VerifyInitData(initData, botToken)
	if err != nil {
		return nil, err
	}

	raw := values.Get("user")
	if raw == "" {
		return nil, &AuthError{"No user in initData"}
	}

	var u InitDataUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == 0 {
		return nil, &AuthError{"No user in initData"}
	}
	return &u, nil
}
