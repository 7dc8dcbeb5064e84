package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/light-controller/internal/status"
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
	"buttonState": status.ButtonState,
	"lightState":  status.LightState,
	// Colours are only ever "#rrggbb" from RGBColour.String.
	"css": func(s fmt.Stringer) template.CSS {
		return template.CSS(s.String())
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Light Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.swatch { display: inline-block; width: 12px; height: 12px; border: 1px solid #444; margin-right: 6px; vertical-align: middle; }
</style>
</head>
<body>
<h1>Light Controller</h1>

<h2>Status LED</h2>
<table>
<tr><th>Showing</th><td id="led-event"><span class="swatch" style="background: {{css .Colour}}"></span>{{.Event}}</td></tr>
<tr><th>Colour</th><td>{{.Colour}}</td></tr>
<tr><th>Active</th><td id="led-active">{{range $i, $e := .Active}}{{if $i}}, {{end}}{{$e}}{{else}}none{{end}}</td></tr>
{{if .LEDError}}<tr><th>Driver</th><td class="disconnected">write failing</td></tr>{{end}}
</table>

<h2>Button</h2>
<table>
<tr><th>State</th><td id="button-state">{{buttonState .Button.Pressed}}</td></tr>
<tr><th>Presses</th><td>{{.Button.Presses}}</td></tr>
<tr><th>Edges</th><td>{{.Button.Edges}}</td></tr>
<tr><th>Light</th><td id="light" class="{{if .LightOn}}on{{else}}off{{end}}">{{lightState .LightOn}}</td></tr>
<tr><th>Press action</th><td>{{.Config.PressAction}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Prefix</th><td>{{.Config.Prefix}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Button line</th><td>{{.Config.Chip}}:{{.Config.Pin}}{{if .Config.ActiveLow}} (active low){{end}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.PressDebounceMs}}ms press / {{.Config.ReleaseDebounceMs}}ms release</td></tr>
<tr><th>LED</th><td>{{.Config.LED}} @ {{.Config.Brightness}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
