package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/blink-logger/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"ratio": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Blink Logger</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: green; font-weight: bold; }
.closed { color: #c60; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Blink Logger<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Eyes</h2>
<table>
<tr><th>State</th><td id="state" class="{{if eq (stateOrUnknown (printf "%s" .State)) "OPEN"}}open{{else if eq (stateOrUnknown (printf "%s" .State)) "CLOSED"}}closed{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Blinks</th><td id="blinks">{{.Count}}</td></tr>
<tr><th>Face</th><td id="face">{{if .FaceVisible}}visible{{else}}not visible{{end}}</td></tr>
<tr><th>Ratio</th><td id="ratio">{{if .HaveRatio}}{{ratio .Raw}} (smoothed {{ratio .Smoothed}}){{else}}-{{end}}</td></tr>
<tr><th>Last action</th><td id="action">{{.LastAction}}</td></tr>
<tr><th>Records</th><td id="records">{{.Records}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Blinks</th><td>{{.Counts.Blinks}}</td></tr>
<tr><th>Closures</th><td>{{.Counts.Closures}}</td></tr>
<tr><th>Too short</th><td>{{.Counts.Rejected}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Landmarks</th><td>{{.Config.Landmarks}}</td></tr>
</table>

<h2>Session</h2>
<table>
<tr><th>Id</th><td>{{.Session}}</td></tr>
<tr><th>Variant</th><td>{{.Config.Variant}}</td></tr>
<tr><th>Log</th><td>{{.Config.LogPath}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Threshold</th><td>{{.Config.Threshold}}</td></tr>
<tr><th>Min close</th><td>{{if eq .Config.MinCloseMs 0}}disabled{{else}}{{.Config.MinCloseMs}}ms{{end}}</td></tr>
<tr><th>Window</th><td>{{.Config.Window}}</td></tr>
<tr><th>Pace</th><td>{{.Config.PaceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }
  function set(id, text) {
    document.getElementById(id).textContent = text;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        var el = document.getElementById("state");
        el.textContent = s.state;
        el.className = s.state === "OPEN" ? "open" : s.state === "CLOSED" ? "closed" : "unknown";
        set("blinks", s.blink_count);
        set("face", s.face_visible ? "visible" : "not visible");
        if (s.ratio) {
          set("ratio", s.ratio.raw.toFixed(3) + " (smoothed " + s.ratio.smoothed.toFixed(3) + ")");
        }
        set("action", s.last_action || "");
        set("records", s.records);
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
