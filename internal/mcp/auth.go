package mcp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	headerAgentID   = "x-agent-id"
	headerTS        = "x-ts"
	headerSignature = "x-signature"
	headerNonce     = "x-nonce"

	// Accepted clock skew between agent and daemon, in ms.
	tsWindowMS = 300_000
)

func canonicalString(ts, method, pathname, agentID, nonce string, rawBody []byte) string {
	return ts + "\n" +
		strings.ToUpper(method) + "\n" +
		pathname + "\n" +
		strings.TrimSpace(agentID) + "\n" +
		strings.TrimSpace(nonce) + "\n" +
		string(rawBody)
}

func signHMAC(secret []byte, canonical string) string {
	h := hmac.New(sha256.New, secret)
	_, _ = h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}

type verifyResult struct {
	AgentID    string
	Signature  string
	HTTPStatus int
	Message    string
}

func verifyHMAC(r *http.Request, rawBody []byte, secret []byte, now time.Time) verifyResult {
	agentID := strings.TrimSpace(r.Header.Get(headerAgentID))
	if agentID == "" {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-agent-id"}
	}
	tsStr := strings.TrimSpace(r.Header.Get(headerTS))
	if tsStr == "" {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-ts"}
	}
	sig := strings.ToLower(strings.TrimSpace(r.Header.Get(headerSignature)))
	if sig == "" {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-signature"}
	}
	nonce := strings.TrimSpace(r.Header.Get(headerNonce))
	if nonce == "" {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-nonce"}
	}

	tsMS, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "bad x-ts"}
	}
	if d := now.UnixMilli() - tsMS; d > tsWindowMS || d < -tsWindowMS {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "x-ts outside window"}
	}

	want := signHMAC(secret, canonicalString(tsStr, r.Method, r.URL.Path, agentID, nonce, rawBody))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return verifyResult{HTTPStatus: http.StatusUnauthorized, Message: "bad signature"}
	}
	return verifyResult{AgentID: agentID, Signature: sig}
}

func requireLoopback(r *http.Request) error {
	host := r.RemoteAddr
	// RemoteAddr carries a port; accept both "ip:port" and bare ip.
	ip := host
	if i := strings.LastIndex(host, ":"); i >= 0 {
		ip = host[:i]
	}
	ip = strings.Trim(ip, "[]")
	if ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return nil
	}
	return fmt.Errorf("forbidden: non-loopback client")
}
