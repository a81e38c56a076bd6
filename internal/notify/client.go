// Package notify talks to the LocalSense alarm surface: the HMAC-signed
// andon REST API and the JSON control channel used to pulse a tag's
// vibration motor on a danger-zone alert.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/websocket"

	"tagsense/internal/protocol/localsense"
)

const (
	alarmPath = "/andon/alarm"
	showPath  = "/andon/show"

	defaultTimeout     = 10 * time.Second
	controlDialTimeout = 5 * time.Second
	// vibratePulse is how long the motor stays on between the enable and
	// disable control requests.
	vibratePulse = 1 * time.Second
)

// Client dispatches buzzer, vibration and display actions to tags. All
// methods are safe for concurrent use; alert dispatch runs on its own
// goroutine so failures here never touch the ingestion path.
type Client struct {
	baseURL    string
	secretKey  string
	controlURL string
	httpc      *http.Client
}

// NewClient builds a notification client. The REST alarm API lives on
// alarmHost:alarmPort; the vibrate control channel is a websocket on the
// engine host itself.
func NewClient(alarmHost string, alarmPort int, secretKey, engineHost string, enginePort int) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", alarmHost, alarmPort),
		secretKey:  secretKey,
		controlURL: fmt.Sprintf("ws://%s:%d/", engineHost, enginePort),
		httpc:      &http.Client{Timeout: defaultTimeout},
	}
}

// sign computes the request signature: hex(HMAC-MD5(secret, path || body)).
// The MD5 keying is fixed by the vendor API.
func (c *Client) sign(path string, body []byte) string {
	mac := hmac.New(md5.New, []byte(c.secretKey))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// vendorReply is the andon API response envelope. issuccess is a string
// "true"/"false" on the wire.
type vendorReply struct {
	IsSuccess string `json:"issuccess"`
	Message   string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("sign", c.sign(path, body))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify: post %s: HTTP %d", path, resp.StatusCode)
	}

	var reply vendorReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("notify: decode %s reply: %w", path, err)
	}
	if reply.IsSuccess == "false" {
		return fmt.Errorf("notify: %s rejected: %s", path, reply.Message)
	}
	return nil
}

// AlarmOptions control the buzzer and vibration pattern of an andon alarm.
type AlarmOptions struct {
	ShakeStartDur int `json:"shake_sdur"`
	ShakeEndDur   int `json:"shake_edur"`
	VibrateTimes  int `json:"vibrate_times"`
	VibrateDur    int `json:"vibrate_dur"`
	SendCounts    int `json:"send_counts"`
	SendInterval  int `json:"send_interval"`
}

// DefaultAlarm is the buzzer-plus-vibration pattern used for danger-zone
// alerts.
func DefaultAlarm() AlarmOptions {
	return AlarmOptions{
		ShakeStartDur: 5,
		ShakeEndDur:   15,
		VibrateTimes:  1,
		VibrateDur:    6,
		SendCounts:    1,
		SendInterval:  1,
	}
}

type alarmRequest struct {
	TagIDs []uint32 `json:"tag_ids"`
	AlarmOptions
}

// SendAlarm triggers the buzzer/vibration alarm on the given tags.
func (c *Client) SendAlarm(ctx context.Context, tagIDs []uint32, opts AlarmOptions) error {
	return c.post(ctx, alarmPath, alarmRequest{TagIDs: tagIDs, AlarmOptions: opts})
}

type showRequest struct {
	WatchID    string `json:"iwatchid"`
	MsgID      string `json:"msgid"`
	Title      string `json:"msgtitle"`
	Desc       string `json:"msgdesc"`
	Time       string `json:"msgtime"`
	Type       string `json:"msgtype"`
	VibrateOff string `json:"vibrateoff"`
}

// SendDisplayMessage pushes a text message to a tag's display.
func (c *Client) SendDisplayMessage(ctx context.Context, tagID uint32, title, message string) error {
	return c.post(ctx, showPath, showRequest{
		WatchID:    strconv.FormatUint(uint64(tagID), 10),
		MsgID:      "10",
		Title:      title,
		Desc:       message,
		Time:       "123",
		Type:       "0",
		VibrateOff: "0",
	})
}

type confRequest struct {
	Conf confBody `json:"localsense_conf_request"`
}

type confBody struct {
	ConfType  string `json:"conf_type"`
	ConfValue string `json:"conf_value"`
	TagID     string `json:"tagid"`
}

// AlertTag pulses the tag's vibration motor: enable, hold for the fixed
// pulse interval, disable. It uses a short-lived control connection so a
// dead alarm endpoint never pins resources beyond this call.
func (c *Client) AlertTag(ctx context.Context, tagID uint32) error {
	cfg, err := websocket.NewConfig(c.controlURL, "http://localhost/")
	if err != nil {
		return fmt.Errorf("notify: control config: %w", err)
	}
	cfg.Protocol = []string{localsense.ControlProtocol}
	cfg.Dialer = &net.Dialer{Timeout: controlDialTimeout}

	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		return fmt.Errorf("notify: control dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := sendConf(conn, tagID, "enable"); err != nil {
		return err
	}
	log.Printf("Vibration enabled on tag %d", tagID)

	select {
	case <-time.After(vibratePulse):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := sendConf(conn, tagID, "disable"); err != nil {
		return err
	}
	log.Printf("Vibration disabled on tag %d", tagID)
	return nil
}

func sendConf(conn *websocket.Conn, tagID uint32, value string) error {
	msg, err := json.Marshal(confRequest{Conf: confBody{
		ConfType:  "tagvibrateandshake",
		ConfValue: value,
		TagID:     strconv.FormatUint(uint64(tagID), 10),
	}})
	if err != nil {
		return err
	}
	if err := websocket.Message.Send(conn, string(msg)); err != nil {
		return fmt.Errorf("notify: control send %s: %w", value, err)
	}
	return nil
}
