package ecovolter

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	HEADER_TIMESTAMP     = "X-Timestamp"
	HEADER_AUTHORIZATION = "Authorization"
	AUTHORIZATION_SCHEME = "HmacSHA256"
)

// Sign returns hex(HMAC-SHA256(secret, url + "\n" + ts + "\n" + body)).
func Sign(secretKey []byte, url string, timestampSeconds int64, body []byte) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(url))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(timestampSeconds, 10)))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func authorizationHeader(signature string) string {
	return AUTHORIZATION_SCHEME + " " + signature
}
