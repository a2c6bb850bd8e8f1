package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/blink-logger/internal/logic"
	"github.com/sweeney/blink-logger/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Variant:     "gamepad",
		PaceMs:      50,
		Threshold:   0.25,
		MinCloseMs:  100,
		Window:      5,
		HeartbeatMs: 900000,
		LogPath:     "14-03_01-05_controller_log.txt",
		Landmarks:   "localhost:50051",
		Broker:      "tcp://192.168.1.200:1883",
	}
	tr := status.NewTracker("s-1", start, cfg)
	srv := New(":0", tr, nil)
	srv.push = 10 * time.Millisecond
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ts.Close()
	})
	return ts, srv, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Record(status.Frame{
		State:       logic.StateClosed,
		Count:       5,
		Counts:      logic.EventCounts{Blinks: 5, Closures: 7, Rejected: 2},
		FaceVisible: true,
		Raw:         0.12,
		Smoothed:    0.2,
		Action:      "LB",
	})
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.State != "CLOSED" {
		t.Errorf("State: got %q, want CLOSED", sj.Status.State)
	}
	if sj.Status.BlinkCount != 5 {
		t.Errorf("BlinkCount: got %d, want 5", sj.Status.BlinkCount)
	}
	if sj.Status.Counts.Rejected != 2 {
		t.Errorf("Counts.Rejected: got %d, want 2", sj.Status.Counts.Rejected)
	}
	if sj.Status.LastAction != "LB" {
		t.Errorf("LastAction: got %q, want LB", sj.Status.LastAction)
	}
	if sj.Status.Ratio == nil || sj.Status.Ratio.Raw != 0.12 {
		t.Errorf("Ratio: got %+v", sj.Status.Ratio)
	}
	if !sj.Status.MQTT.Connected || sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT: got %+v", sj.Status.MQTT)
	}
	if sj.Status.Variant != "gamepad" || sj.Status.Session != "s-1" {
		t.Errorf("session: got %q %q", sj.Status.Variant, sj.Status.Session)
	}
	if sj.Status.Config.PaceMs != 50 {
		t.Errorf("Config.PaceMs: got %d, want 50", sj.Status.Config.PaceMs)
	}
}

func TestJSONBeforeFirstFrame(t *testing.T) {
	ts, _, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.State != "OPEN" {
		t.Errorf("State: got %q, want OPEN", sj.Status.State)
	}
	if sj.Status.Ratio != nil {
		t.Errorf("Ratio: got %+v, want omitted", sj.Status.Ratio)
	}
	if sj.Status.Records != 0 {
		t.Errorf("Records: got %d, want 0", sj.Status.Records)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Record(status.Frame{State: logic.StateOpen, Count: 3, FaceVisible: true, Raw: 0.31, Smoothed: 0.3, Action: "A"})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`<td id="state" class="open">OPEN</td>`,
		`<td id="blinks">3</td>`,
		`0.310 (smoothed 0.300)`,
		`14-03_01-05_controller_log.txt`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusJSON {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var sj status.StatusJSON
	if err := conn.ReadJSON(&sj); err != nil {
		t.Fatalf("read: %v", err)
	}
	return sj
}

func TestWebsocketPushesSnapshots(t *testing.T) {
	ts, _, tr := newTestServer(t)
	conn := dialWS(t, ts)

	first := readStatus(t, conn)
	if first.Status.BlinkCount != 0 {
		t.Errorf("first push: got %d blinks, want 0", first.Status.BlinkCount)
	}

	tr.Record(status.Frame{State: logic.StateOpen, Count: 2})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if readStatus(t, conn).Status.BlinkCount == 2 {
			return
		}
	}
	t.Error("update never pushed")
}

func TestWebsocketClosedOnShutdown(t *testing.T) {
	ts, srv, _ := newTestServer(t)
	conn := dialWS(t, ts)
	readStatus(t, conn)

	srv.Shutdown(context.Background())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("got %v, want going-away close", err)
		}
		return
	}
}
