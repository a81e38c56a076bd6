package notify

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}

	return NewClient(u.Hostname(), port, "test-secret", u.Hostname(), port), srv
}

func TestSignIsHMACMD5OverPathAndBody(t *testing.T) {
	c := NewClient("localhost", 8080, "test-secret", "localhost", 9090)

	body := []byte(`{"tag_ids":[7]}`)
	mac := hmac.New(md5.New, []byte("test-secret"))
	mac.Write([]byte(alarmPath))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	if got := c.sign(alarmPath, body); got != want {
		t.Errorf("sign = %s, want %s", got, want)
	}
}

func TestSendAlarm(t *testing.T) {
	var gotPath, gotSign string
	var gotBody []byte

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSign = r.Header.Get("sign")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"issuccess":"true","message":"ok"}`))
	}))

	err := client.SendAlarm(context.Background(), []uint32{7, 42}, DefaultAlarm())
	if err != nil {
		t.Fatalf("SendAlarm returned error: %v", err)
	}

	if gotPath != "/andon/alarm" {
		t.Errorf("path = %s, want /andon/alarm", gotPath)
	}
	if want := client.sign("/andon/alarm", gotBody); gotSign != want {
		t.Errorf("sign header = %s, want %s", gotSign, want)
	}

	var req struct {
		TagIDs        []uint32 `json:"tag_ids"`
		ShakeStartDur int      `json:"shake_sdur"`
		VibrateTimes  int      `json:"vibrate_times"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal alarm request: %v", err)
	}
	if len(req.TagIDs) != 2 || req.TagIDs[0] != 7 || req.TagIDs[1] != 42 {
		t.Errorf("tag_ids = %v, want [7 42]", req.TagIDs)
	}
	if req.ShakeStartDur != 5 {
		t.Errorf("shake_sdur = %d, want 5", req.ShakeStartDur)
	}
	if req.VibrateTimes != 1 {
		t.Errorf("vibrate_times = %d, want 1", req.VibrateTimes)
	}
}

func TestSendAlarmRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"issuccess":"false","message":"unknown tag"}`))
	}))

	err := client.SendAlarm(context.Background(), []uint32{99}, DefaultAlarm())
	if err == nil {
		t.Fatal("expected error for issuccess=false reply")
	}
	if !strings.Contains(err.Error(), "unknown tag") {
		t.Errorf("error %q should carry the vendor message", err)
	}
}

func TestSendDisplayMessage(t *testing.T) {
	var gotPath string
	var gotBody []byte

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"issuccess":"true","message":"ok"}`))
	}))

	err := client.SendDisplayMessage(context.Background(), 7, "Danger", "Leave the zone")
	if err != nil {
		t.Fatalf("SendDisplayMessage returned error: %v", err)
	}

	if gotPath != "/andon/show" {
		t.Errorf("path = %s, want /andon/show", gotPath)
	}

	var req map[string]string
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal show request: %v", err)
	}
	if req["iwatchid"] != "7" {
		t.Errorf("iwatchid = %s, want 7", req["iwatchid"])
	}
	if req["msgid"] != "10" || req["msgtype"] != "0" || req["vibrateoff"] != "0" {
		t.Errorf("fixed fields wrong: %v", req)
	}
	if req["msgtitle"] != "Danger" || req["msgdesc"] != "Leave the zone" {
		t.Errorf("message fields wrong: %v", req)
	}
}

func TestSendAlarmHTTPError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if err := client.SendAlarm(context.Background(), []uint32{7}, DefaultAlarm()); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
